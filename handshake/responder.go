// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handshake

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
)

// DataProvider - supplies the payload for data responses
type DataProvider interface {
	NetworkData() ([]*offer.Offer, []PeerInfo)
}

// Responder - answers incoming data requests on a node
//
// a response that is not acknowledged within the timeout tears the
// connection down, mirroring the requester side
type Responder struct {
	log        *logger.L
	node       network.Node
	dispatcher *dispatch.Dispatcher
	provider   DataProvider
	timeout    time.Duration
}

// NewResponder - hook a responder to a node
func NewResponder(node network.Node, dispatcher *dispatch.Dispatcher, provider DataProvider) *Responder {
	r := &Responder{
		log:        logger.New("handshake-responder"),
		node:       node,
		dispatcher: dispatcher,
		provider:   provider,
		timeout:    defaultTimeout,
	}
	node.AddMessageListener(r)
	return r
}

// OnMessage - mirror the request nonce back with current data
func (r *Responder) OnMessage(message network.Message, conn *network.Connection) {

	var nonce int64
	switch request := message.(type) {
	case *PreliminaryDataRequest:
		nonce = request.Nonce
	case *UpdateDataRequest:
		nonce = request.Nonce
	default:
		return
	}

	offers, peers := r.provider.NetworkData()
	response := &DataResponse{
		RequestNonce: nonce,
		Offers:       offers,
		Peers:        peers,
	}
	r.log.Infof("answering data request (nonce: %d) with %d offers and %d peers",
		nonce, len(offers), len(peers))

	timer := r.dispatcher.After(r.timeout, func() {
		r.log.Warnf("data response (nonce: %d) not acknowledged", nonce)
		conn.ShutDown()
	})
	conn.Send(response, func(err error) {
		timer.Stop()
		if nil != err {
			r.log.Errorf("data response send error: %s", err)
			conn.ShutDown()
		}
	})
}

var _ network.MessageListener = (*Responder)(nil)
var _ network.MessageListener = (*Handshake)(nil)
