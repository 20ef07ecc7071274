// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet - opaque transaction signing collaborator
//
// transaction construction, key handling and broadcasting live
// outside this node; the protocol only ever sees raw bytes and ids
package wallet

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/escrownet/escrowd/dispatch"
)

// SignedTx - the result of a signing request
type SignedTx struct {
	TxId    string
	TxBytes []byte
}

// SigningService - signs and broadcasts the payout transaction
//
// completions are posted back to the caller's dispatcher, the call
// itself never blocks
type SigningService interface {
	SignAndPublishPayoutTx(tradeId string, payoutAddress string, amount int64, lockTime int64,
		counterpartySignature []byte, completion func(SignedTx, error))
}

// StubSigner - deterministic in-process signer
//
// stands in for a real wallet in tests and local networks: the tx id
// is a digest of all inputs so identical requests produce identical
// transactions
type StubSigner struct {
	dispatcher *dispatch.Dispatcher
}

// NewStubSigner - create a stub bound to a dispatcher
func NewStubSigner(dispatcher *dispatch.Dispatcher) *StubSigner {
	return &StubSigner{dispatcher: dispatcher}
}

// SignAndPublishPayoutTx - derive a deterministic fake transaction
func (s *StubSigner) SignAndPublishPayoutTx(tradeId string, payoutAddress string, amount int64, lockTime int64,
	counterpartySignature []byte, completion func(SignedTx, error)) {

	numbers := make([]byte, 16)
	binary.BigEndian.PutUint64(numbers[:8], uint64(amount))
	binary.BigEndian.PutUint64(numbers[8:], uint64(lockTime))

	digest := sha256.New()
	digest.Write([]byte(tradeId))
	digest.Write([]byte(payoutAddress))
	digest.Write(numbers)
	digest.Write(counterpartySignature)
	txBytes := digest.Sum(nil)

	signed := SignedTx{
		TxId:    hex.EncodeToString(txBytes[:16]),
		TxBytes: txBytes,
	}
	s.dispatcher.Post(func() {
		completion(signed, nil)
	})
}

var _ SigningService = (*StubSigner)(nil)
