// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/mailbox"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/trade"
	"github.com/escrownet/escrowd/wallet"
)

// Protocol - the task chain engine for one trade
//
// the trade's role selects the accepted message set and the chain
// each message triggers; everything runs on the node dispatcher
type Protocol struct {
	log        *logger.L
	trade      *trade.Trade
	store      *trade.Store
	sender     *mailbox.Sender
	mailbox    *mailbox.Store
	signer     wallet.SigningService
	ownAddress network.Address

	chains map[string][]Task
}

// New - create the engine for one trade
func New(name string, t *trade.Trade, store *trade.Store, sender *mailbox.Sender,
	mbox *mailbox.Store, signer wallet.SigningService, ownAddress network.Address) *Protocol {

	p := &Protocol{
		log:        logger.New(name),
		trade:      t,
		store:      store,
		sender:     sender,
		mailbox:    mbox,
		signer:     signer,
		ownAddress: ownAddress,
	}

	p.chains = acceptedChains(t.Role)
	return p
}

// acceptedChains - the accepted message set and the chain each
// message triggers, per role
//
// offerer and taker on the same side of a trade accept the same
// messages, so the pairs share their chain maps
func acceptedChains(role trade.Role) map[string][]Task {

	buyer := map[string][]Task{
		CommandDepositTxPublished: {
			ProcessDepositTxPublished(),
		},
		CommandFinalizePayoutTxRequest: {
			ProcessFinalizePayoutTxRequest(),
			SignAndPublishPayoutTx(),
			SendPayoutTxPublishedMessage(),
			CompleteTrade(),
		},
	}
	seller := map[string][]Task{
		CommandFiatPaymentStarted: {
			ProcessFiatPaymentStarted(),
		},
		CommandPayoutTxPublished: {
			ProcessPayoutTxPublished(),
			CompleteTrade(),
		},
	}

	table := map[trade.Role]map[string][]Task{
		trade.BuyerAsOfferer:  buyer,
		trade.BuyerAsTaker:    buyer,
		trade.SellerAsOfferer: seller,
		trade.SellerAsTaker:   seller,
	}
	return table[role]
}

// Trade - the trade this engine drives
func (p *Protocol) Trade() *trade.Trade {
	return p.trade
}

// HandleMessage - feed one inbound protocol message to the engine
//
// returns false when the message is not consumed: a foreign trade
// id, a message the role never accepts, or a non trade message; an
// unconsumed message neither fails the chain nor is removed from the
// mailbox; completion fires only for consumed messages, once the
// triggered chain has finished
func (p *Protocol) HandleMessage(message network.Message, envelope *mailbox.Envelope, completion func(error)) bool {

	tradeMessage, ok := message.(TradeMessage)
	if !ok {
		return false
	}
	if tradeMessage.GetTradeId() != p.trade.Id {
		p.log.Warnf("trade %s: ignoring %s for foreign trade %s",
			p.trade.Id, message.Command(), tradeMessage.GetTradeId())
		return false
	}
	tasks, accepted := p.chains[message.Command()]
	if !accepted {
		p.log.Warnf("trade %s: role %s never accepts %s",
			p.trade.Id, p.trade.Role, message.Command())
		return false
	}

	p.runChain(message, envelope, tasks, completion)
	return true
}

// ProcessMailbox - replay stored messages addressed to this node
//
// each successfully processed message is removed by its chain;
// messages that fail remain stored and are retried on the next call
func (p *Protocol) ProcessMailbox() {
	for _, envelope := range p.mailbox.Fetch(p.ownAddress) {
		p.HandleMessage(envelope.Message, envelope, func(error) {})
	}
}

// PayOfferFee - either trader records the fee transaction paid when
// the trade was taken
func (p *Protocol) PayOfferFee(offerFeeTxId string, completion func(error)) {
	p.runChain(nil, nil, []Task{
		RecordOfferFeePaid(offerFeeTxId),
	}, completion)
}

// PublishDeposit - seller announces the broadcast deposit
func (p *Protocol) PublishDeposit(depositTx []byte, depositTxId string, completion func(error)) {
	if p.trade.Role.IsBuyer() {
		completion(fault.ErrTradeRoleMismatch)
		return
	}
	p.runChain(nil, nil, []Task{
		RecordPublishedDeposit(depositTx, depositTxId),
		SendDepositTxPublishedMessage(),
	}, completion)
}

// StartFiatPayment - buyer announces the fiat transfer
func (p *Protocol) StartFiatPayment(completion func(error)) {
	if !p.trade.Role.IsBuyer() {
		completion(fault.ErrTradeRoleMismatch)
		return
	}
	p.runChain(nil, nil, []Task{
		SendFiatPaymentStartedMessage(),
	}, completion)
}

// ConfirmFiatReceipt - seller confirms receipt and requests payout
// finalization
func (p *Protocol) ConfirmFiatReceipt(signature []byte, payoutAddress string, lockTime int64, completion func(error)) {
	if p.trade.Role.IsBuyer() {
		completion(fault.ErrTradeRoleMismatch)
		return
	}
	p.runChain(nil, nil, []Task{
		SendFinalizePayoutTxRequest(signature, payoutAddress, lockTime),
	}, completion)
}

func (p *Protocol) runChain(message network.Message, envelope *mailbox.Envelope, tasks []Task, completion func(error)) {
	ctx := &Context{
		Trade:      p.trade,
		Store:      p.store,
		Sender:     p.sender,
		Mailbox:    p.mailbox,
		Signer:     p.signer,
		Message:    message,
		Envelope:   envelope,
		OwnAddress: p.ownAddress,
	}
	runChain(p.log, ctx, tasks, completion)
}

// AttachTo - feed a node's inbound messages to this engine
//
// unconsumed messages are left for other listeners
func (p *Protocol) AttachTo(node network.Node) {
	node.AddMessageListener(&protocolListener{p: p})
}

type protocolListener struct {
	p *Protocol
}

func (l *protocolListener) OnMessage(message network.Message, conn *network.Connection) {
	l.p.HandleMessage(message, nil, func(error) {})
}

var _ network.MessageListener = (*protocolListener)(nil)
