// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package announce_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/announce"
	"github.com/escrownet/escrowd/background"
	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/fixtures"
	"github.com/escrownet/escrowd/handshake"
	"github.com/escrownet/escrowd/network"
)

// a hub node with a peer manager and n peers holding confirmed
// inbound connections to it
type hubHarness struct {
	net        *network.MemoryNetwork
	node       *network.MemoryNode
	dispatcher *dispatch.Dispatcher
	manager    *announce.Manager
	peerAddrs  []network.Address
	stop       func()
}

func startHub(t *testing.T, peers int, cfg announce.Config) *hubHarness {
	m := network.NewMemoryNetwork()

	h := &hubHarness{
		net:        m,
		dispatcher: dispatch.New(fixtures.LogCategory),
	}
	h.node = m.NewNode(fixtures.LogCategory, network.MustNewAddress("10.1.0.100:2130"), h.dispatcher, true)
	cfg.CheckDebounce = time.Hour // checks are driven by the tests
	h.manager = announce.New(fixtures.LogCategory, h.node, h.dispatcher, nil, cfg)

	processes := background.Processes{h.dispatcher}
	dispatchers := []*dispatch.Dispatcher{h.dispatcher}

	for i := 0; i < peers; i += 1 {
		d := dispatch.New(fixtures.LogCategory)
		address := network.MustNewAddress(fmt.Sprintf("10.1.0.%d:2130", i+1))
		peer := m.NewNode(fixtures.LogCategory, address, d, true)
		h.peerAddrs = append(h.peerAddrs, address)
		processes = append(processes, d)
		dispatchers = append(dispatchers, d)

		peer.SendTo(h.node.ListenAddress(), &handshake.UpdateDataRequest{
			SenderAddress: address,
			Nonce:         int64(i),
		}, func(*network.Connection, error) {})
	}

	b := background.Start(processes, nil)
	h.stop = b.Stop

	// drain everything so all inbound connections are confirmed
	for i := 0; i < 3; i += 1 {
		for _, d := range dispatchers {
			d.Do(func() {})
		}
	}
	return h
}

// set each connection's last activity according to its peer index so
// lower indices are older
func (h *hubHarness) spreadActivity(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	h.dispatcher.Do(func() {
		for _, c := range h.node.ConfirmedConnections() {
			address, ok := c.PeerAddress()
			if !ok {
				t.Error("unconfirmed connection in confirmed list")
				return
			}
			for i, a := range h.peerAddrs {
				if a == address {
					c.SetLastActivity(base.Add(time.Duration(i) * time.Minute))
				}
			}
		}
	})
}

func (h *hubHarness) connectedAddresses() map[network.Address]bool {
	out := make(map[network.Address]bool)
	h.dispatcher.Do(func() {
		for _, c := range h.node.ConfirmedConnections() {
			if address, ok := c.PeerAddress(); ok {
				out[address] = true
			}
		}
	})
	return out
}

func TestEvictionClosesOldestInboundPeers(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := startHub(t, 16, announce.Config{MaxConnections: 12})
	defer h.stop()
	h.spreadActivity(t)

	h.dispatcher.Do(func() {
		h.manager.CheckMaxConnections(h.manager.MaxConnections())
	})

	remaining := h.connectedAddresses()
	assert.Equal(t, 12, len(remaining), "connections after eviction")
	for i := 0; i < 4; i += 1 {
		assert.False(t, remaining[h.peerAddrs[i]], "oldest peer %d evicted", i)
	}
	for i := 4; i < 16; i += 1 {
		assert.True(t, remaining[h.peerAddrs[i]], "peer %d kept", i)
	}
}

func TestEvictionPrefersInboundWhileAnyRemain(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := startHub(t, 20, announce.Config{MaxConnections: 12})
	defer h.stop()
	h.spreadActivity(t)

	// two outbound links, older than every inbound one
	outbound := []network.Address{
		network.MustNewAddress("10.2.0.1:2130"),
		network.MustNewAddress("10.2.0.2:2130"),
	}
	targets := background.Processes{}
	targetDispatchers := []*dispatch.Dispatcher{}
	for _, address := range outbound {
		d := dispatch.New(fixtures.LogCategory)
		h.net.NewNode(fixtures.LogCategory, address, d, true)
		targets = append(targets, d)
		targetDispatchers = append(targetDispatchers, d)
	}
	b := background.Start(targets, nil)
	defer b.Stop()

	for i, address := range outbound {
		h.node.SendTo(address, &handshake.PreliminaryDataRequest{
			Nonce: int64(i),
		}, func(*network.Connection, error) {})
	}
	for i := 0; i < 3; i += 1 {
		h.dispatcher.Do(func() {})
		for _, d := range targetDispatchers {
			d.Do(func() {})
		}
	}

	stale := time.Now().Add(-2 * time.Hour)
	h.dispatcher.Do(func() {
		for _, address := range outbound {
			conn := h.node.ConnectionTo(address)
			assert.NotNil(t, conn, "outbound connection confirmed")
			if nil != conn {
				conn.SetLastActivity(stale)
			}
		}
	})

	h.dispatcher.Do(func() {
		h.manager.CheckMaxConnections(h.manager.MaxConnections())
	})

	remaining := h.connectedAddresses()
	assert.Equal(t, 12, len(remaining), "connections after eviction")
	for _, address := range outbound {
		assert.True(t, remaining[address], "outbound peer %s kept", address)
	}
	for i := 0; i < 10; i += 1 {
		assert.False(t, remaining[h.peerAddrs[i]], "oldest inbound peer %d evicted", i)
	}
}

func TestEvictionSparesDirectMessagePeers(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := startHub(t, 16, announce.Config{MaxConnections: 12})
	defer h.stop()
	h.spreadActivity(t)

	// the four oldest connections carry trade messages
	direct := map[network.Address]bool{}
	for i := 0; i < 4; i += 1 {
		direct[h.peerAddrs[i]] = true
	}
	h.dispatcher.Do(func() {
		for _, c := range h.node.ConfirmedConnections() {
			if address, ok := c.PeerAddress(); ok && direct[address] {
				c.SetPeerType(network.PeerTypeDirectMsgPeer)
			}
		}
	})

	h.dispatcher.Do(func() {
		h.manager.CheckMaxConnections(h.manager.MaxConnections())
	})

	remaining := h.connectedAddresses()
	assert.Equal(t, 12, len(remaining), "connections after eviction")
	for i := 0; i < 4; i += 1 {
		assert.True(t, remaining[h.peerAddrs[i]], "direct message peer %d kept", i)
	}
	for i := 4; i < 8; i += 1 {
		assert.False(t, remaining[h.peerAddrs[i]], "oldest ordinary peer %d evicted", i)
	}
}

func TestSuperfluousSeedsShedFirst(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	seedIndices := []int{0, 1, 2}
	cfg := announce.Config{MaxConnections: 2}
	h := startHub(t, 10, cfg)
	defer h.stop()

	h.dispatcher.Do(func() {
		for _, i := range seedIndices {
			h.manager.AddSeedAddress(h.peerAddrs[i])
		}
		for _, c := range h.node.ConfirmedConnections() {
			if address, ok := c.PeerAddress(); ok && h.manager.IsSeedNode(address) {
				c.SetPeerType(network.PeerTypeSeedNode)
			}
		}
	})
	h.spreadActivity(t)

	h.dispatcher.Do(func() {
		h.manager.CheckMaxConnections(h.manager.MaxConnections())
	})

	remaining := h.connectedAddresses()
	assert.Equal(t, 2, len(remaining), "connections after eviction")

	seeds := 0
	for _, i := range seedIndices {
		if remaining[h.peerAddrs[i]] {
			seeds += 1
		}
	}
	assert.Equal(t, 1, seeds, "exactly one seed survives")
}

func TestReportedPeerFloodClosesConnection(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := startHub(t, 1, announce.Config{MaxConnections: 12})
	defer h.stop()

	batch := makeReportedPeers(1200, 0)

	h.dispatcher.Do(func() {
		sender := h.node.ConfirmedConnections()[0]
		err := h.manager.AddToReportedPeers(batch, sender)
		assert.Error(t, err, "flood rejected")
		assert.Equal(t, 0, len(h.manager.ReportedPeers()), "nothing merged")
	})

	assert.Equal(t, 0, len(h.connectedAddresses()), "sender connection closed")
}

func TestReportedPeerFloodWithoutSender(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := startHub(t, 1, announce.Config{MaxConnections: 12})
	defer h.stop()

	// the sending connection can already be gone when the batch is
	// merged
	batch := makeReportedPeers(1200, 0)

	h.dispatcher.Do(func() {
		err := h.manager.AddToReportedPeers(batch, nil)
		assert.Equal(t, fault.ErrPeerReportFlood, err, "flood rejected")
		assert.Equal(t, 0, len(h.manager.ReportedPeers()), "nothing merged")
	})
}

func TestReportedAndPersistedCaps(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := startHub(t, 1, announce.Config{MaxConnections: 12})
	defer h.stop()

	h.dispatcher.Do(func() {
		sender := h.node.ConfirmedConnections()[0]
		assert.NoError(t, h.manager.AddToReportedPeers(makeReportedPeers(600, 0), sender), "first batch")
		assert.NoError(t, h.manager.AddToReportedPeers(makeReportedPeers(600, 600), sender), "second batch")

		assert.True(t, len(h.manager.ReportedPeers()) <= 1000, "reported cap")
		assert.True(t, len(h.manager.PersistedPeers()) <= 500, "persisted cap")
	})
}

func TestReportedPeerTimestampMerge(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	h := startHub(t, 1, announce.Config{MaxConnections: 12})
	defer h.stop()

	address := network.MustNewAddress("10.9.9.9:2130")
	t1 := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)
	mean := time.Date(2020, 3, 1, 11, 0, 0, 0, time.UTC)

	h.dispatcher.Do(func() {
		sender := h.node.ConfirmedConnections()[0]

		// both sides carry a time: arithmetic mean
		_ = h.manager.AddToReportedPeers([]announce.ReportedPeer{{Address: address, LastActivity: t1}}, sender)
		_ = h.manager.AddToReportedPeers([]announce.ReportedPeer{{Address: address, LastActivity: t2}}, sender)
		assert.Equal(t, mean.UnixNano(), findPeer(h.manager.ReportedPeers(), address).LastActivity.UnixNano(), "mean of both timestamps")

		// incoming without a time: stored record wins
		_ = h.manager.AddToReportedPeers([]announce.ReportedPeer{{Address: address}}, sender)
		assert.Equal(t, mean.UnixNano(), findPeer(h.manager.ReportedPeers(), address).LastActivity.UnixNano(), "stored timestamp kept")

		// stored without a time: incoming record wins
		other := network.MustNewAddress("10.9.9.10:2130")
		_ = h.manager.AddToReportedPeers([]announce.ReportedPeer{{Address: other}}, sender)
		_ = h.manager.AddToReportedPeers([]announce.ReportedPeer{{Address: other, LastActivity: t2}}, sender)
		assert.Equal(t, t2.UnixNano(), findPeer(h.manager.ReportedPeers(), other).LastActivity.UnixNano(), "incoming timestamp adopted")
	})
}

func makeReportedPeers(n int, offset int) []announce.ReportedPeer {
	now := time.Now()
	out := make([]announce.ReportedPeer, 0, n)
	for i := 0; i < n; i += 1 {
		out = append(out, announce.ReportedPeer{
			Address:      network.MustNewAddress(fmt.Sprintf("10.2.%d.%d:2130", (offset+i)/250, (offset+i)%250+1)),
			LastActivity: now,
		})
	}
	return out
}

func findPeer(peers []announce.ReportedPeer, address network.Address) announce.ReportedPeer {
	for _, p := range peers {
		if p.Address == address {
			return p
		}
	}
	return announce.ReportedPeer{}
}

// in-memory peer store capturing the last save
type memoryPeerStore struct {
	saved []announce.ReportedPeer
}

func (s *memoryPeerStore) Load() ([]announce.ReportedPeer, error) {
	return nil, nil
}

func (s *memoryPeerStore) Save(peers []announce.ReportedPeer) error {
	s.saved = peers
	return nil
}

func TestSavePeersFoldsLiveAndReported(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	m := network.NewMemoryNetwork()
	dispatcher := dispatch.New(fixtures.LogCategory)
	node := m.NewNode(fixtures.LogCategory, network.MustNewAddress("10.1.0.100:2130"), dispatcher, true)
	store := &memoryPeerStore{}
	manager := announce.New(fixtures.LogCategory, node, dispatcher, store, announce.Config{
		CheckDebounce: time.Hour,
	})

	peerDispatcher := dispatch.New(fixtures.LogCategory)
	peerAddress := network.MustNewAddress("10.1.0.1:2130")
	peer := m.NewNode(fixtures.LogCategory, peerAddress, peerDispatcher, true)
	peer.SendTo(node.ListenAddress(), &handshake.UpdateDataRequest{
		SenderAddress: peerAddress,
		Nonce:         1,
	}, func(*network.Connection, error) {})

	b := background.Start(background.Processes{dispatcher, peerDispatcher}, nil)
	defer b.Stop()
	for i := 0; i < 3; i += 1 {
		dispatcher.Do(func() {})
		peerDispatcher.Do(func() {})
	}

	reportedAddress := network.MustNewAddress("10.9.0.1:2130")
	dispatcher.Do(func() {
		err := manager.AddToReportedPeers([]announce.ReportedPeer{
			{Address: reportedAddress, LastActivity: time.Now()},
		}, node.ConnectionTo(peerAddress))
		assert.NoError(t, err, "merge")

		manager.SavePeers()
	})

	assert.Equal(t, peerAddress, findPeer(store.saved, peerAddress).Address, "live peer persisted")
	assert.Equal(t, reportedAddress, findPeer(store.saved, reportedAddress).Address, "reported peer persisted")
}
