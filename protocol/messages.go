// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"github.com/escrownet/escrowd/network"
)

// wire commands
const (
	CommandDepositTxPublished      = "deposit-tx-published"
	CommandFiatPaymentStarted      = "fiat-payment-started"
	CommandFinalizePayoutTxRequest = "finalize-payout-tx-request"
	CommandPayoutTxPublished       = "payout-tx-published"
)

// TradeMessage - a protocol message bound to one trade
type TradeMessage interface {
	network.Message
	GetTradeId() string
}

// DepositTxPublishedMessage - the deposit transaction is on the chain
type DepositTxPublishedMessage struct {
	TradeId       string          `json:"tradeId"`
	DepositTx     []byte          `json:"depositTx"`
	DepositTxId   string          `json:"depositTxId"`
	SenderAddress network.Address `json:"senderAddress"`
}

func (m *DepositTxPublishedMessage) Command() string {
	return CommandDepositTxPublished
}

func (m *DepositTxPublishedMessage) GetTradeId() string {
	return m.TradeId
}

func (m *DepositTxPublishedMessage) GetSenderAddress() network.Address {
	return m.SenderAddress
}

// FiatPaymentStartedMessage - the buyer has begun the fiat transfer
type FiatPaymentStartedMessage struct {
	TradeId       string          `json:"tradeId"`
	SenderAddress network.Address `json:"senderAddress"`
}

func (m *FiatPaymentStartedMessage) Command() string {
	return CommandFiatPaymentStarted
}

func (m *FiatPaymentStartedMessage) GetTradeId() string {
	return m.TradeId
}

func (m *FiatPaymentStartedMessage) GetSenderAddress() network.Address {
	return m.SenderAddress
}

// FinalizePayoutTxRequest - the seller confirms fiat receipt and
// hands over everything the buyer needs to build the payout
type FinalizePayoutTxRequest struct {
	TradeId             string          `json:"tradeId"`
	SellerSignature     []byte          `json:"sellerSignature"`
	SellerPayoutAddress string          `json:"sellerPayoutAddress"`
	LockTime            int64           `json:"lockTime"`
	SenderAddress       network.Address `json:"senderAddress"`
}

func (m *FinalizePayoutTxRequest) Command() string {
	return CommandFinalizePayoutTxRequest
}

func (m *FinalizePayoutTxRequest) GetTradeId() string {
	return m.TradeId
}

func (m *FinalizePayoutTxRequest) GetSenderAddress() network.Address {
	return m.SenderAddress
}

// PayoutTxPublishedMessage - the payout transaction is on the chain
type PayoutTxPublishedMessage struct {
	TradeId       string          `json:"tradeId"`
	PayoutTx      []byte          `json:"payoutTx"`
	PayoutTxId    string          `json:"payoutTxId"`
	SenderAddress network.Address `json:"senderAddress"`
}

func (m *PayoutTxPublishedMessage) Command() string {
	return CommandPayoutTxPublished
}

func (m *PayoutTxPublishedMessage) GetTradeId() string {
	return m.TradeId
}

func (m *PayoutTxPublishedMessage) GetSenderAddress() network.Address {
	return m.SenderAddress
}

func init() {
	network.RegisterCommand(CommandDepositTxPublished, func() network.Message {
		return &DepositTxPublishedMessage{}
	})
	network.RegisterCommand(CommandFiatPaymentStarted, func() network.Message {
		return &FiatPaymentStartedMessage{}
	})
	network.RegisterCommand(CommandFinalizePayoutTxRequest, func() network.Message {
		return &FinalizePayoutTxRequest{}
	})
	network.RegisterCommand(CommandPayoutTxPublished, func() network.Message {
		return &PayoutTxPublishedMessage{}
	})
}

var _ network.SenderAddressed = (*DepositTxPublishedMessage)(nil)
var _ network.SenderAddressed = (*FiatPaymentStartedMessage)(nil)
var _ network.SenderAddressed = (*FinalizePayoutTxRequest)(nil)
var _ network.SenderAddressed = (*PayoutTxPublishedMessage)(nil)
