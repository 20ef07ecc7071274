// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade

import (
	"time"

	"github.com/escrownet/escrowd/network"
)

// Counterparty - what this node knows about the other side
//
// owned exclusively by the trade; filled in piecewise as protocol
// messages arrive
type Counterparty struct {
	Address       network.Address `json:"address"`
	PubKey        []byte          `json:"pubKey"`
	PayoutAddress string          `json:"payoutAddress"`
	Signature     []byte          `json:"signature"`
}

// StateListener - callback for trade checkpoint changes
type StateListener func(t *Trade, state State)

// Trade - one escrow instance
//
// the trade id equals the taken offer's id; the task chain is the
// only mutator
type Trade struct {
	Id              string
	Role            Role
	Amount          int64 // base units
	Price           int64 // base units
	SecurityDeposit int64 // base units, per side
	Date            int64 // unix seconds of creation
	LockTime        int64

	Counterparty Counterparty

	OfferFeeTxId  string
	DepositTxId   string
	DepositTx     []byte
	PayoutTxId    string
	PayoutTx      []byte
	ArbitratorFee int64 // base units, charged on dispute

	state          State
	stateListeners []StateListener
	disputeOpened  bool
	faults         []string
}

// New - create a trade for a taken offer
func New(offerId string, role Role, amount int64, price int64, securityDeposit int64) *Trade {
	return &Trade{
		Id:              offerId,
		Role:            role,
		Amount:          amount,
		Price:           price,
		SecurityDeposit: securityDeposit,
		Date:            time.Now().Unix(),
	}
}

// State - the last checkpoint reached
func (t *Trade) State() State {
	return t.state
}

// SetState - advance to a later checkpoint and notify subscribers
//
// moving backwards or re-firing the current checkpoint is a no-op,
// so every transition fires at most once and replayed messages are
// harmless
func (t *Trade) SetState(state State) {
	if state <= t.state {
		return
	}
	t.state = state
	for _, listener := range t.stateListeners {
		listener(t, state)
	}
}

// AddStateListener - subscribe to checkpoint changes
func (t *Trade) AddStateListener(listener StateListener) {
	t.stateListeners = append(t.stateListeners, listener)
}

// OpenDispute - branch to arbitration
//
// reachable from any non-terminal checkpoint; the state itself is
// left where it was
func (t *Trade) OpenDispute() bool {
	if t.state.IsTerminal() || t.disputeOpened {
		return false
	}
	t.disputeOpened = true
	return true
}

// DisputeOpened - is the trade in arbitration
func (t *Trade) DisputeOpened() bool {
	return t.disputeOpened
}

// AddFault - attach an operator visible failure description
//
// faults accumulate, they are never silently replaced
func (t *Trade) AddFault(message string) {
	t.faults = append(t.faults, message)
}

// Faults - all recorded failure descriptions, oldest first
func (t *Trade) Faults() []string {
	out := make([]string, len(t.faults))
	copy(out, t.faults)
	return out
}

// PayoutAmount - what one side receives on a clean completion
//
// the traded amount plus that side's security deposit comes back to
// the buyer; the seller recovers just the deposit
func (t *Trade) PayoutAmount() int64 {
	return t.Amount + t.SecurityDeposit
}

// TotalPot - everything locked in the deposit transaction
func (t *Trade) TotalPot() int64 {
	return t.Amount + 2*t.SecurityDeposit
}
