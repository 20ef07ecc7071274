// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package offer - standing trade intents replicated across the network
package offer

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/network"
)

// TTL - an offer expires this long after creation unless refreshed
const TTL = 10 * time.Minute

// protocol-wide amount bounds in base units
const (
	ProtocolMinimumAmount = 10000
	ProtocolMaximumAmount = 100000000
)

// Direction - buy or sell as seen from the offer owner
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	if Buy == d {
		return "buy"
	}
	return "sell"
}

// State - the local lifecycle state of an offer
//
// local-only: not part of the replicated identity
type State int

const (
	StateUndefined State = iota
	StateOfferFeePaid
	StateAvailable
	StateNotAvailable
	StateRemoved
	StateOffererOffline
)

// StateListener - callback for local offer state changes
type StateListener func(offer *Offer, state State)

// Offer - one standing trade intent
//
// all exported fields form the replicated identity and are immutable
// after creation; only the local state changes
type Offer struct {
	Id                  string
	Direction           Direction
	CurrencyCode        string
	Price               int64 // price per unit, base units
	Amount              int64 // base units
	MinAmount           int64 // base units
	Date                int64 // unix seconds of creation
	OwnerAddress        network.Address
	OwnerPubKey         []byte
	PaymentMethod       string
	ArbitratorAddresses []network.Address
	OfferFeeTxId        string

	state          State
	stateListeners []StateListener
}

// NewId - derive a fresh offer id from the owner key
func NewId(ownerPubKey []byte) string {
	seed := make([]byte, 16)
	_, _ = rand.Read(seed)
	now := make([]byte, 8)
	binary.BigEndian.PutUint64(now, uint64(time.Now().UnixNano()))

	digest := sha3.Sum256(append(append(append([]byte{}, ownerPubKey...), seed...), now...))
	return hex.EncodeToString(digest[:16])
}

// Validate - bounds checks before an offer may be published
// a rejected offer never reaches the wire
func (o *Offer) Validate() error {
	switch {
	case "" == o.Id:
		return fault.ErrMissingParameters
	case "" == o.CurrencyCode:
		return fault.ErrMissingParameters
	case "" == o.PaymentMethod:
		return fault.ErrMissingParameters
	case o.Price <= 0:
		return fault.ErrInvalidOfferPrice
	case o.MinAmount < ProtocolMinimumAmount:
		return fault.ErrInvalidOfferMinimumAmount
	case o.Amount < o.MinAmount:
		return fault.ErrInvalidOfferAmount
	case o.Amount > ProtocolMaximumAmount:
		return fault.ErrInvalidOfferAmount
	default:
		return nil
	}
}

// State - current local state
func (o *Offer) State() State {
	return o.state
}

// SetState - change the local state and notify subscribers
func (o *Offer) SetState(state State) {
	if state == o.state {
		return
	}
	o.state = state
	for _, listener := range o.stateListeners {
		listener(o, state)
	}
}

// AddStateListener - subscribe to local state changes
func (o *Offer) AddStateListener(listener StateListener) {
	o.stateListeners = append(o.stateListeners, listener)
}

// ExpiresAt - the wall clock moment this offer lapses
func (o *Offer) ExpiresAt() time.Time {
	return time.Unix(o.Date, 0).Add(TTL)
}
