// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handshake

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
)

// default wait for the matching response
const defaultTimeout = 10 * time.Second

// RequestKind - which request message a handshake sends
type RequestKind int

// request kinds
const (
	Preliminary RequestKind = iota // fresh node, no own address yet
	Update                         // node was online before
)

// Result - the data carried back by the response
type Result struct {
	Offers []*offer.Offer
	Peers  []PeerInfo
}

// Handshake - one data request against one peer
//
// single use: Request must be called exactly once; all callbacks run
// on the dispatcher
type Handshake struct {
	log        *logger.L
	node       network.Node
	dispatcher *dispatch.Dispatcher
	peer       network.Address
	timeout    time.Duration

	nonce     int64
	started   bool
	completed bool
	timer     *dispatch.Timer
	onSuccess func(Result)
	onFailure func(error)
}

// New - create a handshake towards one peer address
//
// a zero timeout selects the default
func New(node network.Node, dispatcher *dispatch.Dispatcher, peer network.Address, timeout time.Duration) *Handshake {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Handshake{
		log:        logger.New("handshake"),
		node:       node,
		dispatcher: dispatcher,
		peer:       peer,
		timeout:    timeout,
		nonce:      newNonce(),
	}
}

// Request - send the request and arm the timeout
//
// must run on the dispatcher; panics when called twice
func (h *Handshake) Request(kind RequestKind, onSuccess func(Result), onFailure func(error)) {
	if h.started {
		logger.Panicf("handshake to %s used twice", h.peer)
	}
	h.started = true
	h.onSuccess = onSuccess
	h.onFailure = onFailure

	var request network.Message
	switch kind {
	case Update:
		own, ok := h.node.Address()
		if !ok {
			h.fail(fault.ErrInvalidNodeAddress)
			return
		}
		request = &UpdateDataRequest{
			SenderAddress: own,
			Nonce:         h.nonce,
		}
	default:
		request = &PreliminaryDataRequest{
			Nonce: h.nonce,
		}
	}

	h.node.AddMessageListener(h)
	h.timer = h.dispatcher.After(h.timeout, func() {
		h.log.Warnf("request to %s timed out after %s", h.peer, h.timeout)
		h.fail(fault.ErrHandshakeTimeout)
	})

	h.log.Infof("requesting data from %s (nonce: %d)", h.peer, h.nonce)
	h.node.SendTo(h.peer, request, func(conn *network.Connection, err error) {
		if nil != err {
			h.fail(err)
		}
	})
}

// OnMessage - watch for the response carrying our nonce
//
// a response with a foreign nonce belongs to a concurrent handshake
// and is left alone
func (h *Handshake) OnMessage(message network.Message, conn *network.Connection) {
	response, ok := message.(*DataResponse)
	if !ok {
		return
	}
	if response.RequestNonce != h.nonce {
		h.log.Debugf("nonce mismatch: have %d, got %d", h.nonce, response.RequestNonce)
		return
	}
	if address, confirmed := conn.PeerAddress(); confirmed && address != h.peer {
		return
	}
	h.succeed(Result{
		Offers: response.Offers,
		Peers:  response.Peers,
	})
}

func (h *Handshake) succeed(result Result) {
	if h.completed {
		return
	}
	h.completed = true
	h.cleanup()
	if nil != h.onSuccess {
		h.onSuccess(result)
	}
}

func (h *Handshake) fail(err error) {
	if h.completed {
		return
	}
	h.completed = true
	h.cleanup()
	if conn := h.node.ConnectionTo(h.peer); nil != conn {
		conn.ShutDown()
	}
	if nil != h.onFailure {
		h.onFailure(err)
	}
}

func (h *Handshake) cleanup() {
	if nil != h.timer {
		h.timer.Stop()
		h.timer = nil
	}
	h.node.RemoveMessageListener(h)
}

func newNonce() int64 {
	buffer := make([]byte, 8)
	_, err := crand.Read(buffer)
	if nil != err {
		logger.Panicf("nonce generation error: %s", err)
	}
	return int64(binary.BigEndian.Uint64(buffer) >> 1)
}
