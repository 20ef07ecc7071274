// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mailbox

import (
	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/network"
)

// Sender - sends trade messages with the three-outcome contract
//
// live delivery is attempted first over a direct connection; when the
// peer is unreachable the message goes to the store instead
type Sender struct {
	log   *logger.L
	node  network.Node
	store *Store
}

// NewSender - create a sender backed by a mailbox store
func NewSender(name string, node network.Node, store *Store) *Sender {
	return &Sender{
		log:   logger.New(name),
		node:  node,
		store: store,
	}
}

// Send - deliver a message to a recipient
//
// completion runs on the dispatcher with exactly one result
func (s *Sender) Send(recipient network.Address, message network.Message, completion func(SendResult)) {
	s.node.SendDirectTo(recipient, message, func(conn *network.Connection, err error) {
		if nil == err {
			s.log.Infof("%s delivered to %s", message.Command(), recipient)
			completion(Arrived)
			return
		}
		if nil == s.store {
			s.log.Errorf("%s to %s failed: %s", message.Command(), recipient, err)
			completion(Fault)
			return
		}
		s.log.Infof("%s to %s stored for pickup: %s", message.Command(), recipient, err)
		s.store.Put(recipient, message)
		completion(StoredInMailbox)
	})
}
