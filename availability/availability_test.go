// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/availability"
	"github.com/escrownet/escrowd/background"
	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/fixtures"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
)

type testPeer struct {
	node       *network.MemoryNode
	dispatcher *dispatch.Dispatcher
}

func startPeers(t *testing.T) (*testPeer, *testPeer, func()) {
	m := network.NewMemoryNetwork()

	taker := &testPeer{dispatcher: dispatch.New(fixtures.LogCategory)}
	owner := &testPeer{dispatcher: dispatch.New(fixtures.LogCategory)}
	taker.node = m.NewNode(fixtures.LogCategory, network.MustNewAddress("10.4.0.1:2130"), taker.dispatcher, true)
	owner.node = m.NewNode(fixtures.LogCategory, network.MustNewAddress("10.4.0.2:2130"), owner.dispatcher, true)

	b := background.Start(background.Processes{taker.dispatcher, owner.dispatcher}, nil)
	return taker, owner, b.Stop
}

func settle(peers ...*testPeer) {
	for i := 0; i < 3; i += 1 {
		for _, p := range peers {
			p.dispatcher.Do(func() {})
		}
	}
}

func liveOffer(owner network.Address) *offer.Offer {
	return &offer.Offer{
		Id:            "offer-live",
		Direction:     offer.Buy,
		CurrencyCode:  "EUR",
		Price:         400000,
		Amount:        100000,
		MinAmount:     20000,
		Date:          time.Now().Unix(),
		OwnerAddress:  owner,
		PaymentMethod: "SEPA",
	}
}

func TestAvailableOffer(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	taker, owner, stop := startPeers(t)
	defer stop()

	o := liveOffer(owner.node.ListenAddress())

	owner.dispatcher.Do(func() {
		store := offer.NewStore(fixtures.LogCategory)
		store.Add(o, owner.node.ListenAddress())
		availability.NewResponder(owner.node, store)
	})

	local := liveOffer(owner.node.ListenAddress())
	successes := 0
	taker.dispatcher.Do(func() {
		c := availability.NewChecker(taker.node, taker.dispatcher, local, time.Second)
		c.Check(
			func() { successes += 1 },
			func(err error) { t.Errorf("unexpected failure: %s", err) })
	})
	settle(taker, owner)

	taker.dispatcher.Do(func() {
		assert.Equal(t, 1, successes, "check succeeded")
		assert.Equal(t, offer.StateAvailable, local.State(), "offer marked available")
	})
}

func TestUnknownOfferResetsState(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	taker, owner, stop := startPeers(t)
	defer stop()

	owner.dispatcher.Do(func() {
		availability.NewResponder(owner.node, offer.NewStore(fixtures.LogCategory))
	})

	local := liveOffer(owner.node.ListenAddress())
	local.SetState(offer.StateOfferFeePaid)

	var failure error
	taker.dispatcher.Do(func() {
		c := availability.NewChecker(taker.node, taker.dispatcher, local, time.Second)
		c.Check(
			func() { t.Error("unexpected success") },
			func(err error) { failure = err })
	})
	settle(taker, owner)

	taker.dispatcher.Do(func() {
		assert.Equal(t, fault.ErrOfferNotFound, failure, "negative answer")
		assert.Equal(t, offer.StateUndefined, local.State(), "offer state reset")
		assert.Nil(t, taker.node.ConnectionTo(owner.node.ListenAddress()), "owner connection closed")
	})
}

func TestExpiredOfferIsNotAvailable(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	taker, owner, stop := startPeers(t)
	defer stop()

	expired := liveOffer(owner.node.ListenAddress())
	expired.Date = time.Now().Add(-2 * offer.TTL).Unix()

	owner.dispatcher.Do(func() {
		store := offer.NewStore(fixtures.LogCategory)
		store.Add(expired, owner.node.ListenAddress())
		availability.NewResponder(owner.node, store)
	})

	local := liveOffer(owner.node.ListenAddress())
	failures := 0
	taker.dispatcher.Do(func() {
		c := availability.NewChecker(taker.node, taker.dispatcher, local, time.Second)
		c.Check(
			func() { t.Error("unexpected success") },
			func(error) { failures += 1 })
	})
	settle(taker, owner)

	taker.dispatcher.Do(func() {
		assert.Equal(t, 1, failures, "expired offer rejected")
	})
}

func TestTimeoutResetsState(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	taker, owner, stop := startPeers(t)
	defer stop()

	// no responder on the owner

	local := liveOffer(owner.node.ListenAddress())
	local.SetState(offer.StateOfferFeePaid)

	var failure error
	taker.dispatcher.Do(func() {
		c := availability.NewChecker(taker.node, taker.dispatcher, local, 50*time.Millisecond)
		c.Check(
			func() { t.Error("unexpected success") },
			func(err error) { failure = err })
	})
	time.Sleep(150 * time.Millisecond)
	settle(taker, owner)

	taker.dispatcher.Do(func() {
		assert.Equal(t, fault.ErrAvailabilityTimeout, failure, "timeout reported")
		assert.Equal(t, offer.StateUndefined, local.State(), "offer state reset")
		assert.Nil(t, taker.node.ConnectionTo(owner.node.ListenAddress()), "owner connection closed")
	})
}

func TestCancelSuppressesCallbacks(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	taker, owner, stop := startPeers(t)
	defer stop()

	local := liveOffer(owner.node.ListenAddress())
	calls := 0
	taker.dispatcher.Do(func() {
		c := availability.NewChecker(taker.node, taker.dispatcher, local, 50*time.Millisecond)
		c.Check(
			func() { calls += 1 },
			func(error) { calls += 1 })
		c.Cancel()
	})
	time.Sleep(150 * time.Millisecond)
	settle(taker, owner)

	taker.dispatcher.Do(func() {
		assert.Equal(t, 0, calls, "no callback after cancel")
	})
}
