// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/mailbox"
	"github.com/escrownet/escrowd/trade"
	"github.com/escrownet/escrowd/wallet"
)

// a delivered or stored message both mean the peer will eventually
// observe it; only a fault fails the task
func sendOutcome(result mailbox.SendResult) error {
	if mailbox.Fault == result {
		return fault.ErrSendFailed
	}
	return nil
}

// RecordOfferFeePaid - record the paid offer fee at take time
func RecordOfferFeePaid(offerFeeTxId string) Task {
	return Task{
		Name: "RecordOfferFeePaid",
		Run: func(ctx *Context, done func(error)) {
			if "" == offerFeeTxId {
				done(fault.ErrMissingParameters)
				return
			}
			t := ctx.Trade
			t.OfferFeeTxId = offerFeeTxId
			t.SetState(trade.StateOfferFeePaid)
			done(nil)
		},
	}
}

// ProcessDepositTxPublished - record the counterparty's deposit
func ProcessDepositTxPublished() Task {
	return Task{
		Name: "ProcessDepositTxPublished",
		Run: func(ctx *Context, done func(error)) {
			message, ok := ctx.Message.(*DepositTxPublishedMessage)
			if !ok {
				done(fault.ErrUnexpectedMessage)
				return
			}
			if 0 == len(message.DepositTx) {
				done(fault.ErrMissingDepositTransaction)
				return
			}
			t := ctx.Trade
			t.DepositTx = message.DepositTx
			t.DepositTxId = message.DepositTxId
			if !message.SenderAddress.IsZero() {
				t.Counterparty.Address = message.SenderAddress
			}
			t.SetState(trade.StateDepositPublished)
			done(nil)
		},
	}
}

// RecordPublishedDeposit - record our own broadcast deposit
func RecordPublishedDeposit(depositTx []byte, depositTxId string) Task {
	return Task{
		Name: "RecordPublishedDeposit",
		Run: func(ctx *Context, done func(error)) {
			if 0 == len(depositTx) {
				done(fault.ErrMissingDepositTransaction)
				return
			}
			t := ctx.Trade
			t.DepositTx = depositTx
			t.DepositTxId = depositTxId
			t.SetState(trade.StateDepositPublished)
			done(nil)
		},
	}
}

// SendDepositTxPublishedMessage - tell the counterparty
func SendDepositTxPublishedMessage() Task {
	return Task{
		Name: "SendDepositTxPublishedMessage",
		Run: func(ctx *Context, done func(error)) {
			t := ctx.Trade
			if 0 == len(t.DepositTx) {
				done(fault.ErrMissingDepositTransaction)
				return
			}
			message := &DepositTxPublishedMessage{
				TradeId:       t.Id,
				DepositTx:     t.DepositTx,
				DepositTxId:   t.DepositTxId,
				SenderAddress: ctx.OwnAddress,
			}
			ctx.Sender.Send(t.Counterparty.Address, message, func(result mailbox.SendResult) {
				if err := sendOutcome(result); nil != err {
					done(err)
					return
				}
				t.SetState(trade.StateDepositPublishedMsgSent)
				done(nil)
			})
		},
	}
}

// SendFiatPaymentStartedMessage - buyer announces the fiat transfer
func SendFiatPaymentStartedMessage() Task {
	return Task{
		Name: "SendFiatPaymentStartedMessage",
		Run: func(ctx *Context, done func(error)) {
			t := ctx.Trade
			message := &FiatPaymentStartedMessage{
				TradeId:       t.Id,
				SenderAddress: ctx.OwnAddress,
			}
			ctx.Sender.Send(t.Counterparty.Address, message, func(result mailbox.SendResult) {
				if err := sendOutcome(result); nil != err {
					done(err)
					return
				}
				t.SetState(trade.StateFiatPaymentStarted)
				done(nil)
			})
		},
	}
}

// ProcessFiatPaymentStarted - seller notes the announced transfer
func ProcessFiatPaymentStarted() Task {
	return Task{
		Name: "ProcessFiatPaymentStarted",
		Run: func(ctx *Context, done func(error)) {
			if _, ok := ctx.Message.(*FiatPaymentStartedMessage); !ok {
				done(fault.ErrUnexpectedMessage)
				return
			}
			ctx.Trade.SetState(trade.StateFiatPaymentStarted)
			done(nil)
		},
	}
}

// SendFinalizePayoutTxRequest - seller confirms fiat receipt and
// hands the buyer signature, payout address and lock time
func SendFinalizePayoutTxRequest(signature []byte, payoutAddress string, lockTime int64) Task {
	return Task{
		Name: "SendFinalizePayoutTxRequest",
		Run: func(ctx *Context, done func(error)) {
			if 0 == len(signature) || "" == payoutAddress {
				done(fault.ErrMissingParameters)
				return
			}
			t := ctx.Trade
			t.LockTime = lockTime
			message := &FinalizePayoutTxRequest{
				TradeId:             t.Id,
				SellerSignature:     signature,
				SellerPayoutAddress: payoutAddress,
				LockTime:            lockTime,
				SenderAddress:       ctx.OwnAddress,
			}
			ctx.Sender.Send(t.Counterparty.Address, message, func(result mailbox.SendResult) {
				if err := sendOutcome(result); nil != err {
					done(err)
					return
				}
				t.SetState(trade.StateFiatPaymentReceiptMsgReceived)
				done(nil)
			})
		},
	}
}

// ProcessFinalizePayoutTxRequest - buyer takes over the seller's
// payout data
//
// a request without a signature fails the task before any state or
// counterparty field changes
func ProcessFinalizePayoutTxRequest() Task {
	return Task{
		Name: "ProcessFinalizePayoutTxRequest",
		Run: func(ctx *Context, done func(error)) {
			message, ok := ctx.Message.(*FinalizePayoutTxRequest)
			if !ok {
				done(fault.ErrUnexpectedMessage)
				return
			}
			if 0 == len(message.SellerSignature) {
				done(fault.ErrInvalidSignature)
				return
			}
			t := ctx.Trade
			t.Counterparty.PayoutAddress = message.SellerPayoutAddress
			t.Counterparty.Signature = message.SellerSignature
			t.LockTime = message.LockTime
			t.SetState(trade.StateFiatPaymentReceiptMsgReceived)
			done(nil)
		},
	}
}

// SignAndPublishPayoutTx - buyer signs and broadcasts the payout
func SignAndPublishPayoutTx() Task {
	return Task{
		Name: "SignAndPublishPayoutTx",
		Run: func(ctx *Context, done func(error)) {
			t := ctx.Trade
			if 0 == len(t.Counterparty.Signature) {
				done(fault.ErrInvalidSignature)
				return
			}
			ctx.Signer.SignAndPublishPayoutTx(t.Id, t.Counterparty.PayoutAddress, t.PayoutAmount(),
				t.LockTime, t.Counterparty.Signature,
				func(signed wallet.SignedTx, err error) {
					if nil != err {
						done(err)
						return
					}
					t.PayoutTx = signed.TxBytes
					t.PayoutTxId = signed.TxId
					t.SetState(trade.StatePayoutPublished)
					done(nil)
				})
		},
	}
}

// SendPayoutTxPublishedMessage - tell the counterparty the payout is
// on the chain
func SendPayoutTxPublishedMessage() Task {
	return Task{
		Name: "SendPayoutTxPublishedMessage",
		Run: func(ctx *Context, done func(error)) {
			t := ctx.Trade
			if "" == t.PayoutTxId {
				done(fault.ErrMissingParameters)
				return
			}
			message := &PayoutTxPublishedMessage{
				TradeId:       t.Id,
				PayoutTx:      t.PayoutTx,
				PayoutTxId:    t.PayoutTxId,
				SenderAddress: ctx.OwnAddress,
			}
			ctx.Sender.Send(t.Counterparty.Address, message, func(result mailbox.SendResult) {
				done(sendOutcome(result))
			})
		},
	}
}

// ProcessPayoutTxPublished - record the broadcast payout
func ProcessPayoutTxPublished() Task {
	return Task{
		Name: "ProcessPayoutTxPublished",
		Run: func(ctx *Context, done func(error)) {
			message, ok := ctx.Message.(*PayoutTxPublishedMessage)
			if !ok {
				done(fault.ErrUnexpectedMessage)
				return
			}
			t := ctx.Trade
			t.PayoutTx = message.PayoutTx
			t.PayoutTxId = message.PayoutTxId
			t.SetState(trade.StatePayoutPublished)
			done(nil)
		},
	}
}

// CompleteTrade - final checkpoint
func CompleteTrade() Task {
	return Task{
		Name: "CompleteTrade",
		Run: func(ctx *Context, done func(error)) {
			ctx.Trade.SetState(trade.StateCompleted)
			done(nil)
		},
	}
}
