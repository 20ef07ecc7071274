// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade

import (
	"time"

	"github.com/escrownet/escrowd/fault"
)

// Winner - who the arbitrator ruled for
type Winner int

// dispute outcomes
const (
	WinnerBuyer Winner = iota
	WinnerSeller
	StaleMate
)

func (w Winner) String() string {
	switch w {
	case WinnerBuyer:
		return "BUYER"
	case WinnerSeller:
		return "SELLER"
	default:
		return "STALE_MATE"
	}
}

// FeePolicy - how the arbitration fee is charged
type FeePolicy int

// fee policies
const (
	FeeLoserPays FeePolicy = iota
	FeeSplit
	FeeWaived
)

func (p FeePolicy) String() string {
	switch p {
	case FeeLoserPays:
		return "LOSER_PAYS"
	case FeeSplit:
		return "SPLIT"
	default:
		return "WAIVED"
	}
}

// DisputeResult - a finalized arbitration outcome
//
// immutable once closed, only local display flags may change
type DisputeResult struct {
	TradeId             string    `json:"tradeId"`
	TraderId            string    `json:"traderId"`
	Winner              Winner    `json:"winner"`
	FeePolicy           FeePolicy `json:"feePolicy"`
	BuyerPayout         int64     `json:"buyerPayout"`  // base units
	SellerPayout        int64     `json:"sellerPayout"` // base units
	ArbitratorPubKey    []byte    `json:"arbitratorPubKey"`
	ArbitratorSignature []byte    `json:"arbitratorSignature"`
	SummaryNotes        string    `json:"summaryNotes"`
	CloseDate           time.Time `json:"closeDate"`

	// evidence flags recorded during arbitration
	TamperProofEvidence bool `json:"tamperProofEvidence"`
	IdVerification      bool `json:"idVerification"`
	ScreenCast          bool `json:"screenCast"`
}

// ComputePayouts - derive the dispute payout split for a trade
//
// the winner receives amount plus deposit, the loser recovers the
// remaining deposit; a stalemate returns each side its deposit and
// splits the traded amount; the arbitration fee is then charged per
// policy
func ComputePayouts(t *Trade, winner Winner, policy FeePolicy) (buyer int64, seller int64, err error) {

	switch winner {
	case WinnerBuyer:
		buyer = t.Amount + t.SecurityDeposit
		seller = t.SecurityDeposit
	case WinnerSeller:
		buyer = t.SecurityDeposit
		seller = t.Amount + t.SecurityDeposit
	case StaleMate:
		half := t.Amount / 2
		buyer = half + t.SecurityDeposit
		seller = t.Amount - half + t.SecurityDeposit
	default:
		return 0, 0, fault.ErrInvalidPayoutSplit
	}

	fee := t.ArbitratorFee
	if 0 == fee {
		return buyer, seller, nil
	}

	switch policy {
	case FeeWaived:
	case FeeSplit:
		halfFee := fee / 2
		buyer -= halfFee
		seller -= fee - halfFee
	case FeeLoserPays:
		switch winner {
		case WinnerBuyer:
			seller -= fee
		case WinnerSeller:
			buyer -= fee
		default:
			// nobody lost: fall back to an even split
			halfFee := fee / 2
			buyer -= halfFee
			seller -= fee - halfFee
		}
	default:
		return 0, 0, fault.ErrInvalidPayoutSplit
	}

	if buyer < 0 || seller < 0 {
		return 0, 0, fault.ErrInvalidPayoutSplit
	}
	return buyer, seller, nil
}

// Validate - check a result against the trade it closes
//
// payouts plus any charged fee must add up to the locked pot
func (r *DisputeResult) Validate(t *Trade) error {
	if r.TradeId != t.Id {
		return fault.ErrTradeIdMismatch
	}

	charged := int64(0)
	if FeeWaived != r.FeePolicy {
		charged = t.ArbitratorFee
	}
	if r.BuyerPayout < 0 || r.SellerPayout < 0 {
		return fault.ErrInvalidPayoutSplit
	}
	if r.BuyerPayout+r.SellerPayout+charged != t.TotalPot() {
		return fault.ErrInvalidPayoutSplit
	}
	return nil
}
