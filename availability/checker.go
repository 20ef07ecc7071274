// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package availability

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
)

// default wait for the owner's answer
const defaultTimeout = 10 * time.Second

// Checker - one availability check for one offer
//
// single use and cancelable; after Cancel neither callback ever
// fires; all callbacks run on the dispatcher
type Checker struct {
	log        *logger.L
	node       network.Node
	dispatcher *dispatch.Dispatcher
	offer      *offer.Offer
	timeout    time.Duration

	started   bool
	completed bool
	timer     *dispatch.Timer
	onSuccess func()
	onFailure func(error)
}

// NewChecker - create a check for one offer
//
// a zero timeout selects the default
func NewChecker(node network.Node, dispatcher *dispatch.Dispatcher, o *offer.Offer, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{
		log:        logger.New("availability"),
		node:       node,
		dispatcher: dispatcher,
		offer:      o,
		timeout:    timeout,
	}
}

// Check - ask the offer owner and arm the timeout
//
// must run on the dispatcher; panics when called twice
func (c *Checker) Check(onSuccess func(), onFailure func(error)) {
	if c.started {
		logger.Panicf("availability check for offer %s used twice", c.offer.Id)
	}
	c.started = true
	c.onSuccess = onSuccess
	c.onFailure = onFailure

	var senderAddress network.Address
	if own, ok := c.node.Address(); ok {
		senderAddress = own
	}
	request := &OfferAvailabilityRequest{
		OfferId:       c.offer.Id,
		SenderAddress: senderAddress,
	}

	c.node.AddMessageListener(c)
	c.timer = c.dispatcher.After(c.timeout, func() {
		c.log.Warnf("offer %s availability check timed out", c.offer.Id)
		c.fail(fault.ErrAvailabilityTimeout)
	})

	c.log.Infof("checking availability of offer %s with %s", c.offer.Id, c.offer.OwnerAddress)
	c.node.SendTo(c.offer.OwnerAddress, request, func(conn *network.Connection, err error) {
		if nil != err {
			c.fail(err)
		}
	})
}

// Cancel - stop the check; no callback fires afterwards
func (c *Checker) Cancel() {
	if c.completed {
		return
	}
	c.completed = true
	c.cleanup()
	c.log.Infof("offer %s availability check canceled", c.offer.Id)
}

// OnMessage - watch for the answer to our offer
func (c *Checker) OnMessage(message network.Message, conn *network.Connection) {
	response, ok := message.(*OfferAvailabilityResponse)
	if !ok || response.OfferId != c.offer.Id {
		return
	}
	if !response.IsAvailable {
		c.fail(fault.ErrOfferNotFound)
		return
	}
	if c.completed {
		return
	}
	c.completed = true
	c.cleanup()
	c.offer.SetState(offer.StateAvailable)
	c.onSuccess()
}

// a failed or negative check resets the local offer state and drops
// the link to the owner
func (c *Checker) fail(err error) {
	if c.completed {
		return
	}
	c.completed = true
	c.cleanup()
	if conn := c.node.ConnectionTo(c.offer.OwnerAddress); nil != conn {
		conn.ShutDown()
	}
	c.offer.SetState(offer.StateUndefined)
	c.onFailure(err)
}

func (c *Checker) cleanup() {
	if nil != c.timer {
		c.timer.Stop()
		c.timer = nil
	}
	c.node.RemoveMessageListener(c)
}

var _ network.MessageListener = (*Checker)(nil)
