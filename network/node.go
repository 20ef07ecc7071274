// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/dispatch"
)

// MessageListener - receives every inbound protocol message
type MessageListener interface {
	OnMessage(message Message, connection *Connection)
}

// ConnectionListener - receives connection lifecycle events
type ConnectionListener interface {
	OnConnection(connection *Connection)
	OnDisconnect(connection *Connection)
}

// Node - a transport endpoint with a set of live connections
type Node interface {

	// own address; false until it is known
	Address() (Address, bool)

	// all live connections
	Connections() []*Connection

	// live connections with a confirmed remote address
	ConfirmedConnections() []*Connection

	// the live connection to an address, nil when none
	ConnectionTo(address Address) *Connection

	// send to an address, dialing a new connection when needed
	// completion runs on the dispatcher
	SendTo(address Address, message Message, completion func(*Connection, error))

	// like SendTo but tags a newly opened connection DIRECT_MSG_PEER
	SendDirectTo(address Address, message Message, completion func(*Connection, error))

	AddMessageListener(listener MessageListener)
	RemoveMessageListener(listener MessageListener)
	AddConnectionListener(listener ConnectionListener)
	RemoveConnectionListener(listener ConnectionListener)
}

// shared bookkeeping for node implementations
type nodeBase struct {
	sync.Mutex

	log        *logger.L
	dispatcher *dispatch.Dispatcher

	address    Address
	hasAddress bool

	connections []*Connection

	messageListeners    []MessageListener
	connectionListeners []ConnectionListener
}

func (n *nodeBase) initialise(name string, dispatcher *dispatch.Dispatcher) {
	n.log = logger.New(name)
	n.dispatcher = dispatcher
}

func (n *nodeBase) Address() (Address, bool) {
	n.Lock()
	defer n.Unlock()
	return n.address, n.hasAddress
}

func (n *nodeBase) setAddress(address Address) {
	n.Lock()
	defer n.Unlock()
	n.address = address
	n.hasAddress = true
}

func (n *nodeBase) Connections() []*Connection {
	n.Lock()
	defer n.Unlock()
	all := make([]*Connection, len(n.connections))
	copy(all, n.connections)
	return all
}

func (n *nodeBase) ConfirmedConnections() []*Connection {
	n.Lock()
	defer n.Unlock()
	confirmed := make([]*Connection, 0, len(n.connections))
	for _, c := range n.connections {
		if c.IsConfirmed() {
			confirmed = append(confirmed, c)
		}
	}
	return confirmed
}

func (n *nodeBase) ConnectionTo(address Address) *Connection {
	n.Lock()
	defer n.Unlock()
	for _, c := range n.connections {
		if a, ok := c.PeerAddress(); ok && a == address {
			return c
		}
	}
	return nil
}

func (n *nodeBase) AddMessageListener(listener MessageListener) {
	n.Lock()
	defer n.Unlock()
	n.messageListeners = append(n.messageListeners, listener)
}

func (n *nodeBase) RemoveMessageListener(listener MessageListener) {
	n.Lock()
	defer n.Unlock()
	for i, l := range n.messageListeners {
		if l == listener {
			n.messageListeners = append(n.messageListeners[:i], n.messageListeners[i+1:]...)
			return
		}
	}
}

func (n *nodeBase) AddConnectionListener(listener ConnectionListener) {
	n.Lock()
	defer n.Unlock()
	n.connectionListeners = append(n.connectionListeners, listener)
}

func (n *nodeBase) RemoveConnectionListener(listener ConnectionListener) {
	n.Lock()
	defer n.Unlock()
	for i, l := range n.connectionListeners {
		if l == listener {
			n.connectionListeners = append(n.connectionListeners[:i], n.connectionListeners[i+1:]...)
			return
		}
	}
}

func (n *nodeBase) addConnection(connection *Connection) {
	n.Lock()
	n.connections = append(n.connections, connection)
	listeners := n.currentConnectionListeners()
	n.Unlock()

	n.dispatcher.Post(func() {
		for _, l := range listeners {
			l.OnConnection(connection)
		}
	})
}

func (n *nodeBase) removeConnection(connection *Connection) {
	n.Lock()
	found := false
	for i, c := range n.connections {
		if c == connection {
			n.connections = append(n.connections[:i], n.connections[i+1:]...)
			found = true
			break
		}
	}
	listeners := n.currentConnectionListeners()
	n.Unlock()

	if !found {
		return
	}
	n.dispatcher.Post(func() {
		for _, l := range listeners {
			l.OnDisconnect(connection)
		}
	})
}

// deliver an inbound message to the listeners
// runs on the dispatcher
func (n *nodeBase) deliver(message Message, connection *Connection) {
	connection.Touch()
	connection.noteReceived()

	// a message carrying the sender's address confirms the connection
	if m, ok := message.(SenderAddressed); ok {
		if a := m.GetSenderAddress(); !a.IsZero() {
			connection.ConfirmAddress(a)
		}
	}

	n.Lock()
	listeners := make([]MessageListener, len(n.messageListeners))
	copy(listeners, n.messageListeners)
	n.Unlock()

	for _, l := range listeners {
		l.OnMessage(message, connection)
	}
}

func (n *nodeBase) currentConnectionListeners() []ConnectionListener {
	listeners := make([]ConnectionListener, len(n.connectionListeners))
	copy(listeners, n.connectionListeners)
	return listeners
}
