// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/background"
	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fixtures"
	"github.com/escrownet/escrowd/network"
)

type recorder struct {
	messages    []network.Message
	connections []*network.Connection
}

func (r *recorder) OnMessage(message network.Message, connection *network.Connection) {
	r.messages = append(r.messages, message)
}

func (r *recorder) OnConnection(connection *network.Connection) {
	r.connections = append(r.connections, connection)
}

func (r *recorder) OnDisconnect(connection *network.Connection) {
	for i, c := range r.connections {
		if c == connection {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			return
		}
	}
}

type testNode struct {
	node       *network.MemoryNode
	dispatcher *dispatch.Dispatcher
	recorder   *recorder
}

func startMemoryPair(t *testing.T) (*testNode, *testNode, func()) {
	m := network.NewMemoryNetwork()

	alpha := &testNode{
		dispatcher: dispatch.New(fixtures.LogCategory),
		recorder:   &recorder{},
	}
	beta := &testNode{
		dispatcher: dispatch.New(fixtures.LogCategory),
		recorder:   &recorder{},
	}
	alpha.node = m.NewNode(fixtures.LogCategory, network.MustNewAddress("10.0.0.1:2130"), alpha.dispatcher, true)
	beta.node = m.NewNode(fixtures.LogCategory, network.MustNewAddress("10.0.0.2:2130"), beta.dispatcher, true)
	alpha.node.AddMessageListener(alpha.recorder)
	alpha.node.AddConnectionListener(alpha.recorder)
	beta.node.AddMessageListener(beta.recorder)
	beta.node.AddConnectionListener(beta.recorder)

	b := background.Start(background.Processes{alpha.dispatcher, beta.dispatcher}, nil)
	return alpha, beta, b.Stop
}

// wait until both dispatchers have drained
func settle(nodes ...*testNode) {
	for i := 0; i < 3; i++ {
		for _, n := range nodes {
			n.dispatcher.Do(func() {})
		}
	}
}

func TestSendCreatesConnectionPair(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	alpha, beta, stop := startMemoryPair(t)
	defer stop()

	var sendErr error
	alpha.node.SendTo(beta.node.ListenAddress(), &pingMessage{Text: "hi"}, func(c *network.Connection, err error) {
		sendErr = err
	})
	settle(alpha, beta)

	assert.NoError(t, sendErr, "send")
	assert.Equal(t, 1, len(alpha.node.Connections()), "alpha connections")
	assert.Equal(t, 1, len(beta.node.Connections()), "beta connections")
	assert.Equal(t, 1, len(beta.recorder.messages), "delivered messages")

	out := alpha.node.Connections()[0]
	in := beta.node.Connections()[0]
	assert.Equal(t, network.Outbound, out.Direction(), "alpha side outbound")
	assert.Equal(t, network.Inbound, in.Direction(), "beta side inbound")
	assert.True(t, out.IsConfirmed(), "outbound connection knows the peer address")
	assert.False(t, in.IsConfirmed(), "inbound connection has no address yet")
}

func TestSenderAddressConfirmsInbound(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	alpha, beta, stop := startMemoryPair(t)
	defer stop()

	alpha.node.SendTo(beta.node.ListenAddress(),
		&pingMessage{Text: "hi", SenderAddress: alpha.node.ListenAddress()},
		func(*network.Connection, error) {})
	settle(alpha, beta)

	in := beta.node.Connections()[0]
	a, confirmed := in.PeerAddress()
	assert.True(t, confirmed, "inbound confirmed by sender address")
	assert.Equal(t, alpha.node.ListenAddress(), a, "confirmed address")
	assert.Equal(t, 1, len(beta.node.ConfirmedConnections()), "confirmed count")
}

func TestSendToUnreachablePeer(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	alpha, _, stop := startMemoryPair(t)
	defer stop()

	var sendErr error
	alpha.node.SendTo(network.MustNewAddress("10.9.9.9:2130"), &pingMessage{}, func(c *network.Connection, err error) {
		sendErr = err
	})
	settle(alpha)

	assert.Error(t, sendErr, "unreachable peer")
}

func TestShutDownRemovesBothSides(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	alpha, beta, stop := startMemoryPair(t)
	defer stop()

	alpha.node.SendTo(beta.node.ListenAddress(), &pingMessage{}, func(*network.Connection, error) {})
	settle(alpha, beta)

	alpha.node.Connections()[0].ShutDown()
	settle(alpha, beta)

	assert.Equal(t, 0, len(alpha.node.Connections()), "alpha connections after shutdown")
	assert.Equal(t, 0, len(beta.node.Connections()), "beta connections after shutdown")
	assert.Equal(t, 0, len(alpha.recorder.connections), "alpha listener saw disconnect")
	assert.Equal(t, 0, len(beta.recorder.connections), "beta listener saw disconnect")
}

func TestDirectSendTagsConnection(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	alpha, beta, stop := startMemoryPair(t)
	defer stop()

	alpha.node.SendDirectTo(beta.node.ListenAddress(), &pingMessage{}, func(*network.Connection, error) {})
	settle(alpha, beta)

	out := alpha.node.Connections()[0]
	assert.Equal(t, network.PeerTypeDirectMsgPeer, out.PeerType(), "direct msg peer tag")
}
