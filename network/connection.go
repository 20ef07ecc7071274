// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"fmt"
	"sync"
	"time"

	"github.com/escrownet/escrowd/counter"
)

// Direction - who opened the connection
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// PeerType - classification of a connection
type PeerType int

const (
	// ordinary peer, the default
	PeerTypePeer PeerType = iota

	// outbound connection to a configured seed address
	PeerTypeSeedNode

	// opened to deliver a direct application message
	// permanently exempt from forced eviction
	PeerTypeDirectMsgPeer
)

func (p PeerType) String() string {
	switch p {
	case PeerTypePeer:
		return "PEER"
	case PeerTypeSeedNode:
		return "SEED_NODE"
	case PeerTypeDirectMsgPeer:
		return "DIRECT_MSG_PEER"
	default:
		return "unknown"
	}
}

// Connection - one live transport session to a remote node
//
// the transport implementation owns creation and teardown; everything
// else holds references only
type Connection struct {
	mutex sync.Mutex

	direction    Direction
	peerType     PeerType
	lastActivity time.Time
	peerAddress  Address
	confirmed    bool
	closed       bool

	sent     counter.Counter
	received counter.Counter

	sendFunc  func(Message, func(error))
	closeFunc func()
}

// NewConnection - create a connection backed by transport callbacks
// used by transport implementations only
func NewConnection(direction Direction, send func(Message, func(error)), close func()) *Connection {
	return &Connection{
		direction:    direction,
		peerType:     PeerTypePeer,
		lastActivity: time.Now(),
		sendFunc:     send,
		closeFunc:    close,
	}
}

func (c *Connection) Direction() Direction {
	return c.direction
}

func (c *Connection) PeerType() PeerType {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.peerType
}

// SetPeerType - classify the connection
//
// classification is sticky: a DIRECT_MSG_PEER never changes and any
// other type may only be raised to SEED_NODE
func (c *Connection) SetPeerType(peerType PeerType) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.peerType {
	case PeerTypePeer:
		c.peerType = peerType
	case PeerTypeSeedNode, PeerTypeDirectMsgPeer:
		// no downgrade
	}
}

// LastActivity - timestamp of the most recent traffic
func (c *Connection) LastActivity() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lastActivity
}

// Touch - record traffic on the connection
func (c *Connection) Touch() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lastActivity = time.Now()
}

// used by tests to create ordering between connections
func (c *Connection) SetLastActivity(t time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lastActivity = t
}

// PeerAddress - the confirmed remote address, if present
func (c *Connection) PeerAddress() (Address, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.peerAddress, c.confirmed
}

// IsConfirmed - true once the remote address is known
func (c *Connection) IsConfirmed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.confirmed
}

// ConfirmAddress - record the remote address
//
// once present the address never changes; later calls are ignored
func (c *Connection) ConfirmAddress(address Address) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.confirmed {
		return
	}
	c.peerAddress = address
	c.confirmed = true
}

// Send - transmit a message on this connection
// completion runs on the node's dispatcher with the send result
func (c *Connection) Send(message Message, completion func(error)) {
	c.Touch()
	c.sent.Increment()
	c.sendFunc(message, completion)
}

// MessagesSent - total messages transmitted on this connection
func (c *Connection) MessagesSent() uint64 {
	return c.sent.Uint64()
}

// MessagesReceived - total messages delivered from this connection
func (c *Connection) MessagesReceived() uint64 {
	return c.received.Uint64()
}

// used by the node delivery path
func (c *Connection) noteReceived() {
	c.received.Increment()
}

// ShutDown - close the connection
// repeat calls are no-ops
func (c *Connection) ShutDown() {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	c.mutex.Unlock()
	c.closeFunc()
}

func (c *Connection) String() string {
	address := "unconfirmed"
	if a, ok := c.PeerAddress(); ok {
		address = a.String()
	}
	return fmt.Sprintf("%s %s %s", c.direction, c.PeerType(), address)
}
