// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package offer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
)

func validOffer() *offer.Offer {
	return &offer.Offer{
		Id:            offer.NewId([]byte("owner public key")),
		Direction:     offer.Buy,
		CurrencyCode:  "EUR",
		Price:         250000,
		Amount:        1000000,
		MinAmount:     50000,
		Date:          1500000000,
		OwnerAddress:  network.MustNewAddress("10.0.0.1:2130"),
		OwnerPubKey:   []byte("owner public key"),
		PaymentMethod: "SEPA",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validOffer().Validate(), "valid offer")

	o := validOffer()
	o.Price = 0
	assert.Equal(t, fault.ErrInvalidOfferPrice, o.Validate(), "zero price")

	o = validOffer()
	o.Price = -5
	assert.Equal(t, fault.ErrInvalidOfferPrice, o.Validate(), "negative price")

	o = validOffer()
	o.MinAmount = offer.ProtocolMinimumAmount - 1
	assert.Equal(t, fault.ErrInvalidOfferMinimumAmount, o.Validate(), "below protocol minimum")

	o = validOffer()
	o.Amount = o.MinAmount - 1
	assert.Equal(t, fault.ErrInvalidOfferAmount, o.Validate(), "amount below minimum")

	o = validOffer()
	o.Amount = offer.ProtocolMaximumAmount + 1
	assert.Equal(t, fault.ErrInvalidOfferAmount, o.Validate(), "amount above protocol maximum")

	o = validOffer()
	o.CurrencyCode = ""
	assert.Equal(t, fault.ErrMissingParameters, o.Validate(), "missing currency")
}

func TestStateNotification(t *testing.T) {
	o := validOffer()
	assert.Equal(t, offer.StateUndefined, o.State(), "initial state")

	seen := []offer.State{}
	o.AddStateListener(func(_ *offer.Offer, s offer.State) {
		seen = append(seen, s)
	})

	o.SetState(offer.StateAvailable)
	o.SetState(offer.StateAvailable) // unchanged, no notification
	o.SetState(offer.StateRemoved)

	assert.Equal(t, []offer.State{offer.StateAvailable, offer.StateRemoved}, seen, "notifications")
}

func TestNewIdIsUnique(t *testing.T) {
	a := offer.NewId([]byte("key"))
	b := offer.NewId([]byte("key"))
	assert.NotEqual(t, a, b, "ids must differ")
	assert.Equal(t, 32, len(a), "id length")
}
