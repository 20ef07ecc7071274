// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package availability

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
)

// Responder - answers availability requests from the local offer book
type Responder struct {
	log    *logger.L
	node   network.Node
	offers *offer.Store
}

// NewResponder - hook a responder to a node
func NewResponder(node network.Node, offers *offer.Store) *Responder {
	r := &Responder{
		log:    logger.New("availability-responder"),
		node:   node,
		offers: offers,
	}
	node.AddMessageListener(r)
	return r
}

// OnMessage - answer with the offer's current liveness
//
// an offer is available while it is known, unexpired and not in a
// terminal state
func (r *Responder) OnMessage(message network.Message, conn *network.Connection) {
	request, ok := message.(*OfferAvailabilityRequest)
	if !ok {
		return
	}

	available := false
	if o, found := r.offers.Get(request.OfferId); found {
		switch o.State() {
		case offer.StateRemoved, offer.StateNotAvailable:
		default:
			available = time.Now().Before(o.ExpiresAt())
		}
	}

	r.log.Infof("offer %s availability: %t", request.OfferId, available)
	conn.Send(&OfferAvailabilityResponse{
		OfferId:     request.OfferId,
		IsAvailable: available,
	}, func(err error) {
		if nil != err {
			r.log.Errorf("availability response send error: %s", err)
		}
	})
}

var _ network.MessageListener = (*Responder)(nil)
