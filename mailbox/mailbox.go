// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mailbox

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/network"
)

// SendResult - the outcome of one mailbox send
type SendResult int

// send outcomes
const (
	Arrived         SendResult = iota // peer online, acknowledged
	StoredInMailbox                   // peer offline, stored for pickup
	Fault                             // unrecoverable
)

func (r SendResult) String() string {
	switch r {
	case Arrived:
		return "ARRIVED"
	case StoredInMailbox:
		return "STORED_IN_MAILBOX"
	default:
		return "FAULT"
	}
}

// Envelope - one stored mailbox message
type Envelope struct {
	Id        string
	Recipient network.Address
	Message   network.Message
	StoredAt  time.Time
}

// Store - holds messages for recipients that were offline
type Store struct {
	sync.Mutex
	log      *logger.L
	messages map[network.Address][]*Envelope
}

// NewStore - create an empty mailbox store
func NewStore(name string) *Store {
	return &Store{
		log:      logger.New(name),
		messages: make(map[network.Address][]*Envelope),
	}
}

// Put - store a message for later pickup
func (s *Store) Put(recipient network.Address, message network.Message) *Envelope {
	s.Lock()
	defer s.Unlock()

	buffer := make([]byte, 16)
	_, _ = rand.Read(buffer)
	envelope := &Envelope{
		Id:        hex.EncodeToString(buffer),
		Recipient: recipient,
		Message:   message,
		StoredAt:  time.Now(),
	}
	s.messages[recipient] = append(s.messages[recipient], envelope)
	s.log.Infof("stored %s for %s (id: %s)", message.Command(), recipient, envelope.Id)
	return envelope
}

// Fetch - all stored messages for a recipient, oldest first
//
// fetching does not remove: removal is explicit, after the message
// has been fully processed
func (s *Store) Fetch(recipient network.Address) []*Envelope {
	s.Lock()
	defer s.Unlock()
	out := make([]*Envelope, len(s.messages[recipient]))
	copy(out, s.messages[recipient])
	return out
}

// Remove - drop one processed message
//
// removing an unknown id is a no-op so replay after a crash between
// processing and removal stays harmless
func (s *Store) Remove(recipient network.Address, id string) {
	s.Lock()
	defer s.Unlock()
	stored := s.messages[recipient]
	for i, envelope := range stored {
		if envelope.Id == id {
			s.messages[recipient] = append(stored[:i], stored[i+1:]...)
			s.log.Debugf("removed mailbox message %s", id)
			return
		}
	}
}

// Count - stored messages for a recipient
func (s *Store) Count(recipient network.Address) int {
	s.Lock()
	defer s.Unlock()
	return len(s.messages[recipient])
}
