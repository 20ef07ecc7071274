// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fault"
)

// socket timeouts
const (
	zmqSendTimeout = 30 * time.Second
	zmqPollTimeout = 500 * time.Millisecond
)

// ZmqNode - transport endpoint over ZeroMQ
//
// a ROUTER socket accepts inbound links, one DEALER socket per remote
// address carries outbound links; every socket is touched only by the
// Run goroutine, other goroutines enqueue socket work and wake the
// poller through an inproc PAIR
type ZmqNode struct {
	nodeBase

	listen Address

	router     *zmq.Socket
	signalRecv *zmq.Socket
	signalSend *zmq.Socket
	signalLock sync.Mutex

	dealers    map[*Connection]*zmq.Socket
	identities map[string]*Connection

	commands chan func()
}

// NewZmqNode - bind the listen socket and prepare the poller
func NewZmqNode(name string, listen Address, dispatcher *dispatch.Dispatcher, addressKnown bool) (*ZmqNode, error) {

	node := &ZmqNode{
		listen:     listen,
		dealers:    make(map[*Connection]*zmq.Socket),
		identities: make(map[string]*Connection),
		commands:   make(chan func(), 100),
	}
	node.initialise(name, dispatcher)
	if addressKnown {
		node.setAddress(listen)
	}

	router, err := zmq.NewSocket(zmq.ROUTER)
	if nil != err {
		return nil, err
	}
	_ = router.SetLinger(0)
	_ = router.SetSndtimeo(zmqSendTimeout)
	if err := router.Bind(fmt.Sprintf("tcp://*:%d", listen.Port)); nil != err {
		router.Close()
		return nil, err
	}
	node.router = router

	// wakeup pair so queued socket work interrupts the poll
	signal := fmt.Sprintf("inproc://signal-%s-%d", name, listen.Port)
	recv, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		router.Close()
		return nil, err
	}
	_ = recv.SetLinger(0)
	if err := recv.Bind(signal); nil != err {
		recv.Close()
		router.Close()
		return nil, err
	}
	send, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		recv.Close()
		router.Close()
		return nil, err
	}
	_ = send.SetLinger(0)
	if err := send.Connect(signal); nil != err {
		send.Close()
		recv.Close()
		router.Close()
		return nil, err
	}
	node.signalRecv = recv
	node.signalSend = send

	return node, nil
}

// Run - the transport loop
// conforms to the background.Process interface
func (node *ZmqNode) Run(args interface{}, shutdown <-chan struct{}) {
	log := node.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop
		default:
		}

		poller := zmq.NewPoller()
		poller.Add(node.router, zmq.POLLIN)
		poller.Add(node.signalRecv, zmq.POLLIN)
		sockets := make([]*zmq.Socket, 0, len(node.dealers))
		connections := make([]*Connection, 0, len(node.dealers))
		for connection, socket := range node.dealers {
			poller.Add(socket, zmq.POLLIN)
			sockets = append(sockets, socket)
			connections = append(connections, connection)
		}

		polled, err := poller.Poll(zmqPollTimeout)
		if nil != err {
			log.Errorf("poll error: %s", err)
			continue loop
		}

	polledLoop:
		for _, p := range polled {
			switch s := p.Socket; s {
			case node.signalRecv:
				_, _ = s.RecvMessageBytes(0)
				node.drainCommands()
			case node.router:
				frames, err := s.RecvMessageBytes(0)
				if nil != err {
					log.Errorf("router receive error: %s", err)
					continue polledLoop
				}
				node.routerReceive(frames)
			default:
				for i, dealer := range sockets {
					if dealer == s {
						frames, err := s.RecvMessageBytes(0)
						if nil != err {
							log.Errorf("dealer receive error: %s", err)
							continue polledLoop
						}
						node.dealerReceive(connections[i], frames)
						continue polledLoop
					}
				}
			}
		}
	}

	node.teardown()
	log.Info("stopped")
}

// queue socket work for the Run goroutine and wake the poller
func (node *ZmqNode) post(command func()) {
	node.commands <- command
	node.signalLock.Lock()
	_, _ = node.signalSend.SendMessage("")
	node.signalLock.Unlock()
}

func (node *ZmqNode) drainCommands() {
	for {
		select {
		case command := <-node.commands:
			command()
		default:
			return
		}
	}
}

// inbound frames: [identity, command, payload]
func (node *ZmqNode) routerReceive(frames [][]byte) {
	if 3 != len(frames) {
		node.log.Warnf("router: unexpected frame count: %d", len(frames))
		return
	}
	identity := string(frames[0])

	connection, ok := node.identities[identity]
	if !ok {
		connection = node.newInboundConnection(identity)
		node.identities[identity] = connection
		node.addConnection(connection)
	}

	node.deliverFrames(connection, frames[1:])
}

// outbound frames: [command, payload]
func (node *ZmqNode) dealerReceive(connection *Connection, frames [][]byte) {
	if 2 != len(frames) {
		node.log.Warnf("dealer: unexpected frame count: %d", len(frames))
		return
	}
	node.deliverFrames(connection, frames)
}

func (node *ZmqNode) deliverFrames(connection *Connection, frames [][]byte) {
	message, err := Unpack(frames)
	if nil != err {
		node.log.Warnf("unpack failed: %s", err)
		return
	}
	node.dispatcher.Post(func() {
		node.deliver(message, connection)
	})
}

func (node *ZmqNode) newInboundConnection(identity string) *Connection {
	var connection *Connection
	connection = NewConnection(Inbound,
		func(message Message, completion func(error)) {
			node.post(func() {
				frames, err := Pack(message)
				if nil == err {
					_, err = node.router.SendMessage(identity, frames[0], frames[1])
				}
				node.complete(completion, err)
			})
		},
		func() {
			node.post(func() {
				delete(node.identities, identity)
			})
			node.removeConnection(connection)
		})
	return connection
}

func (node *ZmqNode) SendTo(address Address, message Message, completion func(*Connection, error)) {
	node.sendTo(address, message, completion, false)
}

func (node *ZmqNode) SendDirectTo(address Address, message Message, completion func(*Connection, error)) {
	node.sendTo(address, message, completion, true)
}

func (node *ZmqNode) sendTo(address Address, message Message, completion func(*Connection, error), direct bool) {
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

// open a DEALER socket towards a remote router
func (node *ZmqNode) connect(address Address, direct bool) (*Connection, error) {

	dealer, err := zmq.NewSocket(zmq.DEALER)
	if nil != err {
		return nil, err
	}

	// random identity so reconnects are not conflated by the remote
	identity := make([]byte, 32)
	_, err = rand.Read(identity)
	if nil != err {
		dealer.Close()
		return nil, err
	}
	_ = dealer.SetIdentity(string(identity))
	_ = dealer.SetLinger(0)
	_ = dealer.SetSndtimeo(zmqSendTimeout)

	if err := dealer.Connect(fmt.Sprintf("tcp://%s", address)); nil != err {
		dealer.Close()
		return nil, fault.ErrNotConnected
	}

	var connection *Connection
	connection = NewConnection(Outbound,
		func(message Message, completion func(error)) {
			node.post(func() {
				frames, err := Pack(message)
				if nil == err {
					_, err = dealer.SendMessage(frames[0], frames[1])
				}
				node.complete(completion, err)
			})
		},
		func() {
			node.post(func() {
				delete(node.dealers, connection)
				dealer.Close()
			})
			node.removeConnection(connection)
		})
	connection.ConfirmAddress(address)
	if direct {
		connection.SetPeerType(PeerTypeDirectMsgPeer)
	}

	node.post(func() {
		node.dealers[connection] = dealer
	})
	node.addConnection(connection)
	return connection, nil
}

func (node *ZmqNode) complete(completion func(error), err error) {
	if nil == completion {
		return
	}
	node.dispatcher.Post(func() {
		completion(err)
	})
}

func (node *ZmqNode) teardown() {
	node.drainCommands()
	for _, socket := range node.dealers {
		socket.Close()
	}
	node.router.Close()
	node.signalRecv.Close()
	node.signalSend.Close()
}
