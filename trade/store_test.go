// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/fixtures"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/storage"
	"github.com/escrownet/escrowd/trade"
)

const databaseDirectory = "testing-trades-db"

func setupStorage(t *testing.T) func() {
	fixtures.SetupTestLogger()
	_ = os.RemoveAll(databaseDirectory)
	err := storage.Initialise(databaseDirectory)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	return func() {
		storage.Finalise()
		_ = os.RemoveAll(databaseDirectory)
		fixtures.TeardownTestLogger()
	}
}

func TestTradeRoundTrip(t *testing.T) {
	defer setupStorage(t)()

	store := trade.NewStore(fixtures.LogCategory, storage.Pool.Trades)

	tr := trade.New("offer-42", trade.SellerAsTaker, 100000, 400000, 10000)
	tr.Counterparty = trade.Counterparty{
		Address:       network.MustNewAddress("10.0.0.7:2130"),
		PubKey:        []byte{1, 2, 3},
		PayoutAddress: "payout-addr",
		Signature:     []byte{4, 5, 6},
	}
	tr.OfferFeeTxId = "fee-tx"
	tr.DepositTxId = "deposit-tx"
	tr.SetState(trade.StateDepositPublished)
	tr.AddFault("flaky counterparty")
	assert.True(t, tr.OpenDispute(), "dispute opened")

	assert.NoError(t, store.Save(tr), "save")

	loaded, err := store.Load(tr.Id)
	assert.NoError(t, err, "load")
	assert.Equal(t, tr.Id, loaded.Id, "id")
	assert.Equal(t, trade.SellerAsTaker, loaded.Role, "role")
	assert.Equal(t, trade.StateDepositPublished, loaded.State(), "checkpoint survives")
	assert.Equal(t, tr.Counterparty, loaded.Counterparty, "counterparty record")
	assert.Equal(t, "fee-tx", loaded.OfferFeeTxId, "fee tx survives")
	assert.Equal(t, []string{"flaky counterparty"}, loaded.Faults(), "faults survive")
	assert.True(t, loaded.DisputeOpened(), "dispute flag survives")

	// resumed trades keep the monotonic guard
	loaded.SetState(trade.StateOfferFeePaid)
	assert.Equal(t, trade.StateDepositPublished, loaded.State(), "no rollback after load")
}

func TestLoadUnknownTrade(t *testing.T) {
	defer setupStorage(t)()

	store := trade.NewStore(fixtures.LogCategory, storage.Pool.Trades)
	_, err := store.Load("no-such-trade")
	assert.Error(t, err, "unknown id")
}

func TestAllTrades(t *testing.T) {
	defer setupStorage(t)()

	store := trade.NewStore(fixtures.LogCategory, storage.Pool.Trades)
	assert.NoError(t, store.Save(trade.New("offer-a", trade.BuyerAsOfferer, 100000, 400000, 10000)), "save a")
	assert.NoError(t, store.Save(trade.New("offer-b", trade.SellerAsOfferer, 50000, 400000, 10000)), "save b")

	assert.Equal(t, 2, len(store.All()), "both trades load")
}
