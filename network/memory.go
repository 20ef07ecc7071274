// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"sync"

	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fault"
)

// MemoryNetwork - an in-process transport for tests
//
// nodes are reachable by address as soon as they are created and
// unreachable after Remove; message delivery preserves per-connection
// ordering because each node has a single dispatcher
type MemoryNetwork struct {
	sync.Mutex
	nodes map[Address]*MemoryNode
}

func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{
		nodes: make(map[Address]*MemoryNode),
	}
}

// NewNode - create and register a node
//
// addressKnown false models a node that has not yet learned its own
// reachable address (fresh node before first bootstrap)
func (m *MemoryNetwork) NewNode(name string, address Address, dispatcher *dispatch.Dispatcher, addressKnown bool) *MemoryNode {
	node := &MemoryNode{
		network: m,
		listen:  address,
	}
	node.initialise(name, dispatcher)
	if addressKnown {
		node.setAddress(address)
	}

	m.Lock()
	m.nodes[address] = node
	m.Unlock()
	return node
}

// Remove - make a node unreachable for new dials
func (m *MemoryNetwork) Remove(address Address) {
	m.Lock()
	delete(m.nodes, address)
	m.Unlock()
}

func (m *MemoryNetwork) lookup(address Address) *MemoryNode {
	m.Lock()
	defer m.Unlock()
	return m.nodes[address]
}

// MemoryNode - one endpoint on a MemoryNetwork
type MemoryNode struct {
	nodeBase
	network *MemoryNetwork
	listen  Address
}

// ListenAddress - the registered address, known or not
func (node *MemoryNode) ListenAddress() Address {
	return node.listen
}

// ConfirmOwnAddress - the node has learned its reachable address
func (node *MemoryNode) ConfirmOwnAddress() {
	node.setAddress(node.listen)
}

func (node *MemoryNode) SendTo(address Address, message Message, completion func(*Connection, error)) {
	node.send(address, message, completion, false)
}

func (node *MemoryNode) SendDirectTo(address Address, message Message, completion func(*Connection, error)) {
	node.send(address, message, completion, true)
}

func (node *MemoryNode) send(address Address, message Message, completion func(*Connection, error), direct bool) {
	connection := node.ConnectionTo(address)
	if nil == connection {
		c, err := node.connect(address, direct)
		if nil != err {
			node.dispatcher.Post(func() {
				completion(nil, err)
			})
			return
		}
		connection = c
	}
	connection.Send(message, func(err error) {
		completion(connection, err)
	})
}

// open a new two-sided in-process link
func (node *MemoryNode) connect(address Address, direct bool) (*Connection, error) {
	remote := node.network.lookup(address)
	if nil == remote {
		return nil, fault.ErrNotConnected
	}

	link := &memoryLink{
		localNode:  node,
		remoteNode: remote,
	}

	link.localConn = NewConnection(Outbound, link.sendFromLocal, link.close)
	link.remoteConn = NewConnection(Inbound, link.sendFromRemote, link.close)
	link.localConn.ConfirmAddress(address)
	if direct {
		link.localConn.SetPeerType(PeerTypeDirectMsgPeer)
	}

	node.addConnection(link.localConn)
	remote.addConnection(link.remoteConn)
	return link.localConn, nil
}

// the two directions of one in-process connection
type memoryLink struct {
	mutex      sync.Mutex
	closed     bool
	localNode  *MemoryNode
	remoteNode *MemoryNode
	localConn  *Connection
	remoteConn *Connection
}

func (l *memoryLink) isClosed() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.closed
}

func (l *memoryLink) sendFromLocal(message Message, completion func(error)) {
	l.transfer(l.localNode, l.remoteNode, l.remoteConn, message, completion)
}

func (l *memoryLink) sendFromRemote(message Message, completion func(error)) {
	l.transfer(l.remoteNode, l.localNode, l.localConn, message, completion)
}

func (l *memoryLink) transfer(from *MemoryNode, to *MemoryNode, target *Connection, message Message, completion func(error)) {
	if l.isClosed() {
		from.dispatcher.Post(func() {
			completion(fault.ErrConnectionAlreadyClosed)
		})
		return
	}

	// round-trip through the wire codec so the in-process transport
	// exercises the same encoding as the production one
	frames, err := Pack(message)
	if nil != err {
		from.dispatcher.Post(func() {
			completion(err)
		})
		return
	}

	to.dispatcher.Post(func() {
		if l.isClosed() {
			return
		}
		received, err := Unpack(frames)
		if nil != err {
			to.log.Errorf("unpack failed: %s", err)
			return
		}
		to.deliver(received, target)
	})
	if nil != completion {
		from.dispatcher.Post(func() {
			completion(nil)
		})
	}
}

func (l *memoryLink) close() {
	l.mutex.Lock()
	if l.closed {
		l.mutex.Unlock()
		return
	}
	l.closed = true
	l.mutex.Unlock()

	l.localNode.removeConnection(l.localConn)
	l.remoteNode.removeConnection(l.remoteConn)
}
