// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade

// State - checkpoint of one trade
//
// ordered: a trade only ever moves to a higher state
type State int

// trade checkpoints in protocol order
const (
	StateUndefined State = iota
	StateOfferFeePaid
	StateDepositPublished
	StateDepositPublishedMsgSent
	StateFiatPaymentStarted
	StateFiatPaymentReceiptMsgReceived
	StatePayoutPublished
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateUndefined:
		return "UNDEFINED"
	case StateOfferFeePaid:
		return "OFFER_FEE_PAID"
	case StateDepositPublished:
		return "DEPOSIT_PUBLISHED"
	case StateDepositPublishedMsgSent:
		return "DEPOSIT_PUBLISHED_MSG_SENT"
	case StateFiatPaymentStarted:
		return "FIAT_PAYMENT_STARTED"
	case StateFiatPaymentReceiptMsgReceived:
		return "FIAT_PAYMENT_RECEIPT_MSG_RECEIVED"
	case StatePayoutPublished:
		return "PAYOUT_PUBLISHED"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "INVALID_STATE"
	}
}

// IsTerminal - no further protocol steps follow
func (s State) IsTerminal() bool {
	return StateCompleted == s
}
