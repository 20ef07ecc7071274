// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/trade"
)

func TestStateIsMonotonic(t *testing.T) {
	tr := trade.New("offer-1", trade.BuyerAsOfferer, 100000, 400000, 10000)

	fired := []trade.State{}
	tr.AddStateListener(func(_ *trade.Trade, state trade.State) {
		fired = append(fired, state)
	})

	tr.SetState(trade.StateDepositPublished)
	tr.SetState(trade.StateDepositPublished) // re-fire is a no-op
	tr.SetState(trade.StateOfferFeePaid)     // backwards is a no-op
	tr.SetState(trade.StatePayoutPublished)

	assert.Equal(t, trade.StatePayoutPublished, tr.State(), "final state")
	assert.Equal(t, []trade.State{trade.StateDepositPublished, trade.StatePayoutPublished}, fired,
		"each transition fires at most once")
}

func TestFaultsAccumulate(t *testing.T) {
	tr := trade.New("offer-1", trade.SellerAsTaker, 100000, 400000, 10000)

	tr.AddFault("first problem")
	tr.AddFault("second problem")

	assert.Equal(t, []string{"first problem", "second problem"}, tr.Faults(), "faults in order")
}

func TestDisputeBranch(t *testing.T) {
	tr := trade.New("offer-1", trade.BuyerAsTaker, 100000, 400000, 10000)
	tr.SetState(trade.StateDepositPublished)

	assert.True(t, tr.OpenDispute(), "dispute opens from a non-terminal state")
	assert.False(t, tr.OpenDispute(), "second open is a no-op")
	assert.Equal(t, trade.StateDepositPublished, tr.State(), "state unchanged by dispute")

	completed := trade.New("offer-2", trade.BuyerAsTaker, 100000, 400000, 10000)
	completed.SetState(trade.StateCompleted)
	assert.False(t, completed.OpenDispute(), "no dispute on a completed trade")
}

func TestAmounts(t *testing.T) {
	tr := trade.New("offer-1", trade.SellerAsOfferer, 100000, 400000, 10000)

	assert.Equal(t, int64(110000), tr.PayoutAmount(), "amount plus deposit")
	assert.Equal(t, int64(120000), tr.TotalPot(), "amount plus both deposits")
}

func TestRoles(t *testing.T) {
	assert.True(t, trade.BuyerAsOfferer.IsBuyer(), "buyer as offerer buys")
	assert.True(t, trade.BuyerAsOfferer.IsOfferer(), "buyer as offerer offers")
	assert.False(t, trade.SellerAsTaker.IsBuyer(), "seller as taker sells")
	assert.False(t, trade.SellerAsTaker.IsOfferer(), "seller as taker takes")
	assert.Equal(t, "BUYER_AS_TAKER", trade.BuyerAsTaker.String(), "role name")
}
