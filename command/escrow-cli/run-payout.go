// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/escrownet/escrowd/trade"
)

func runPayout(c *cli.Context) error {

	amount := c.Int64("amount")
	deposit := c.Int64("deposit")
	if amount <= 0 || deposit < 0 {
		return fmt.Errorf("amount and deposit must be positive")
	}

	var winner trade.Winner
	switch c.String("winner") {
	case "buyer", "b":
		winner = trade.WinnerBuyer
	case "seller", "s":
		winner = trade.WinnerSeller
	case "stalemate", "none":
		winner = trade.StaleMate
	default:
		return fmt.Errorf("winner: %q can only be buyer/seller/stalemate", c.String("winner"))
	}

	var policy trade.FeePolicy
	switch c.String("fee-policy") {
	case "loser", "":
		policy = trade.FeeLoserPays
	case "split":
		policy = trade.FeeSplit
	case "waived":
		policy = trade.FeeWaived
	default:
		return fmt.Errorf("fee-policy: %q can only be loser/split/waived", c.String("fee-policy"))
	}

	t := trade.New("payout-preview", trade.BuyerAsOfferer, amount, 0, deposit)
	t.ArbitratorFee = c.Int64("fee")

	buyer, seller, err := trade.ComputePayouts(t, winner, policy)
	if nil != err {
		return err
	}

	type split struct {
		Winner       string `json:"winner"`
		FeePolicy    string `json:"fee_policy"`
		BuyerPayout  int64  `json:"buyer_payout"`
		SellerPayout int64  `json:"seller_payout"`
		TotalPot     int64  `json:"total_pot"`
	}
	return printJson(c.App.Writer, split{
		Winner:       winner.String(),
		FeePolicy:    policy.String(),
		BuyerPayout:  buyer,
		SellerPayout: seller,
		TotalPot:     t.TotalPot(),
	})
}
