// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package announce

import (
	"math/rand"
	"sort"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/handshake"
	"github.com/escrownet/escrowd/network"
)

// limits on the gossip caches
const (
	maxReportedPeers       = 1000
	maxPersistedPeers      = 500
	reportedFloodThreshold = 1000 // plus 3 × minConnections at runtime
)

// defaults used when the corresponding Config field is zero
const (
	defaultMaxConnections = 12
	defaultCheckDebounce  = 3 * time.Second
	defaultGossipBurst    = 200
)

// Config - tuning knobs for a peer manager
type Config struct {
	MaxConnections int // target band upper bound
	SeedAddresses  []network.Address
	CheckDebounce  time.Duration // delay between trigger and enforcement
	GossipBurst    int           // reported peer batches accepted in a burst
}

// Manager - peer registry and admission control for one node
//
// all state is owned by the node dispatcher; exported methods that
// touch state must run inside dispatcher.Do / dispatcher.Post
type Manager struct {
	log        *logger.L
	node       network.Node
	dispatcher *dispatch.Dispatcher
	store      PeerStore

	maxConnections int
	minConnections int
	extended1      int // allow inbound peers up to here
	extended2      int // allow any peers up to here
	checkDebounce  time.Duration

	seedAddresses  map[network.Address]struct{}
	reportedPeers  map[network.Address]ReportedPeer
	persistedPeers map[network.Address]ReportedPeer

	counted    map[*network.Connection]struct{}
	checkTimer *dispatch.Timer
	limiter    *rate.Limiter
	rand       *rand.Rand
}

// New - create a peer manager and hook it to a node
//
// previously persisted peers are loaded before the first connection
// can arrive
func New(name string, node network.Node, dispatcher *dispatch.Dispatcher, store PeerStore, cfg Config) *Manager {

	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaultMaxConnections
	}
	if cfg.CheckDebounce <= 0 {
		cfg.CheckDebounce = defaultCheckDebounce
	}
	if cfg.GossipBurst <= 0 {
		cfg.GossipBurst = defaultGossipBurst
	}

	minConnections := cfg.MaxConnections - 4
	if minConnections < 0 {
		minConnections = 0
	}

	m := &Manager{
		log:            logger.New(name),
		node:           node,
		dispatcher:     dispatcher,
		store:          store,
		maxConnections: cfg.MaxConnections,
		minConnections: minConnections,
		extended1:      cfg.MaxConnections + 6,
		extended2:      cfg.MaxConnections + 12,
		checkDebounce:  cfg.CheckDebounce,
		seedAddresses:  make(map[network.Address]struct{}),
		reportedPeers:  make(map[network.Address]ReportedPeer),
		persistedPeers: make(map[network.Address]ReportedPeer),
		counted:        make(map[*network.Connection]struct{}),
		limiter:        rate.NewLimiter(rate.Every(100*time.Millisecond), cfg.GossipBurst),
		rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, address := range cfg.SeedAddresses {
		m.seedAddresses[address] = struct{}{}
	}

	if nil != store {
		peers, err := store.Load()
		if nil != err {
			m.log.Errorf("load persisted peers error: %s", err)
		} else {
			for _, p := range peers {
				m.persistedPeers[p.Address] = p
			}
		}
	}

	node.AddConnectionListener(m)
	node.AddMessageListener(m)
	return m
}

// AddSeedAddress - register a further seed address
func (m *Manager) AddSeedAddress(address network.Address) {
	m.seedAddresses[address] = struct{}{}
}

// SeedNodes - snapshot of the configured seed addresses
func (m *Manager) SeedNodes() []network.Address {
	seeds := make([]network.Address, 0, len(m.seedAddresses))
	for seed := range m.seedAddresses {
		seeds = append(seeds, seed)
	}
	return seeds
}

// IsSeedNode - is the address a configured seed
func (m *Manager) IsSeedNode(address network.Address) bool {
	_, ok := m.seedAddresses[address]
	return ok
}

// IsSelf - is the address this node's own address
func (m *Manager) IsSelf(address network.Address) bool {
	own, ok := m.node.Address()
	return ok && own == address
}

// IsConfirmed - is there a confirmed connection to the address
func (m *Manager) IsConfirmed(address network.Address) bool {
	return nil != m.node.ConnectionTo(address)
}

// HasSufficientConnections - at or above the lower band edge
func (m *Manager) HasSufficientConnections() bool {
	return len(m.node.ConfirmedConnections()) >= m.minConnections
}

// MaxConnections - the configured upper band edge
func (m *Manager) MaxConnections() int {
	return m.maxConnections
}

// ConnectionListener

// OnConnection - classify and schedule an enforcement pass
func (m *Manager) OnConnection(conn *network.Connection) {
	if address, ok := conn.PeerAddress(); ok {
		if network.Outbound == conn.Direction() && m.IsSeedNode(address) {
			conn.SetPeerType(network.PeerTypeSeedNode)
		}
		m.noteConfirmed(conn)
	}
}

// OnDisconnect - drop bookkeeping for the connection
func (m *Manager) OnDisconnect(conn *network.Connection) {
	delete(m.counted, conn)
}

// MessageListener

// OnMessage - reclassify on handshake traffic
//
// an update data request only ever originates from a node that was
// started before, i.e. a seed or a restarted peer; a seed sender is
// promoted so the eviction stages keep their hands off it
func (m *Manager) OnMessage(msg network.Message, conn *network.Connection) {
	if _, ok := msg.(*handshake.UpdateDataRequest); ok {
		if address, confirmed := conn.PeerAddress(); confirmed && m.IsSeedNode(address) {
			conn.SetPeerType(network.PeerTypeSeedNode)
		}
	}
	m.noteConfirmed(conn)
}

// first confirmation of a connection triggers a debounced
// enforcement pass
func (m *Manager) noteConfirmed(conn *network.Connection) {
	if !conn.IsConfirmed() {
		return
	}
	if _, done := m.counted[conn]; done {
		return
	}
	m.counted[conn] = struct{}{}
	m.scheduleCheck()
}

func (m *Manager) scheduleCheck() {
	if nil != m.checkTimer {
		return
	}
	m.checkTimer = m.dispatcher.After(m.checkDebounce, func() {
		m.checkTimer = nil
		m.CheckMaxConnections(m.maxConnections)
	})
}

// CheckMaxConnections - staged eviction towards the given limit
//
// inbound ordinary peers are always the first candidates; the pool
// widens to all ordinary peers only when no inbound candidate exists
// and the count is above extended1, and to everything but direct
// message peers only when that is also empty above extended2
func (m *Manager) CheckMaxConnections(limit int) {
	m.removeSuperfluousSeedNodes()

	confirmed := m.node.ConfirmedConnections()
	n := len(confirmed)
	if n <= limit {
		m.log.Debugf("connection check: %d <= limit %d", n, limit)
		return
	}

	candidates := m.filterConnections(confirmed, func(c *network.Connection) bool {
		return network.PeerTypePeer == c.PeerType() && network.Inbound == c.Direction()
	})
	if 0 == len(candidates) && n > m.extended1 {
		candidates = m.filterConnections(confirmed, func(c *network.Connection) bool {
			return network.PeerTypePeer == c.PeerType()
		})
	}
	if 0 == len(candidates) && n > m.extended2 {
		candidates = m.filterConnections(confirmed, func(c *network.Connection) bool {
			return network.PeerTypeDirectMsgPeer != c.PeerType()
		})
	}

	if 0 == len(candidates) {
		m.log.Debugf("connection check: %d over limit %d but no candidates", n, limit)
		return
	}

	sort.SliceStable(candidates, func(i int, j int) bool {
		return candidates[i].LastActivity().Before(candidates[j].LastActivity())
	})

	victim := candidates[0]
	m.log.Infof("closing %s connection (idle since %s, sent: %d, received: %d): %d over limit %d",
		victim.PeerType(), victim.LastActivity().Format(time.RFC3339),
		victim.MessagesSent(), victim.MessagesReceived(), n, limit)
	victim.ShutDown()

	// keep going until the count is inside the band
	m.CheckMaxConnections(limit)
}

// shed extra seed links while over extended1, but never the last one
func (m *Manager) removeSuperfluousSeedNodes() {
	confirmed := m.node.ConfirmedConnections()
	if len(confirmed) <= m.extended1 {
		return
	}
	seeds := m.filterConnections(confirmed, func(c *network.Connection) bool {
		return network.PeerTypeSeedNode == c.PeerType()
	})
	for len(seeds) > 1 && len(m.node.ConfirmedConnections()) > m.extended1 {
		sort.SliceStable(seeds, func(i int, j int) bool {
			return seeds[i].LastActivity().Before(seeds[j].LastActivity())
		})
		m.log.Infof("closing superfluous seed connection idle since %s",
			seeds[0].LastActivity().Format(time.RFC3339))
		seeds[0].ShutDown()
		seeds = seeds[1:]
	}
}

func (m *Manager) filterConnections(conns []*network.Connection, keep func(*network.Connection) bool) []*network.Connection {
	out := make([]*network.Connection, 0, len(conns))
	for _, c := range conns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// ShutDownConnection - close any live connection to the address
//
// direct message connections are protected and stay open
func (m *Manager) ShutDownConnection(address network.Address) {
	conn := m.node.ConnectionTo(address)
	if nil == conn {
		return
	}
	if network.PeerTypeDirectMsgPeer == conn.PeerType() {
		m.log.Debugf("not closing direct message connection: %s", conn)
		return
	}
	conn.ShutDown()
}

// SavePeers - fold current knowledge and write it out synchronously
//
// called once at shutdown; the periodic folds save asynchronously
func (m *Manager) SavePeers() {
	m.foldPeers()

	if nil != m.store {
		if err := m.store.Save(m.PersistedPeers()); nil != err {
			m.log.Errorf("save persisted peers error: %s", err)
		}
	}
}

// gossip

// AddToReportedPeers - merge a batch of gossiped peer records
//
// an oversized batch is abuse: the sending connection is closed and
// nothing from the batch is merged
func (m *Manager) AddToReportedPeers(incoming []ReportedPeer, sender *network.Connection) error {

	if len(incoming) > reportedFloodThreshold+3*m.minConnections {
		m.log.Warnf("reported peer flood: %d entries, closing connection", len(incoming))
		if nil != sender {
			sender.ShutDown()
		}
		return fault.ErrPeerReportFlood
	}
	if !m.limiter.Allow() {
		m.log.Warn("reported peer rate exceeded, batch dropped")
		return nil
	}

	own, hasOwn := m.node.Address()
	for _, p := range incoming {
		if p.Address.IsZero() {
			continue
		}
		if hasOwn && p.Address == own {
			continue
		}
		if nil != m.node.ConnectionTo(p.Address) {
			continue
		}
		if stored, ok := m.reportedPeers[p.Address]; ok {
			m.reportedPeers[p.Address] = mergeReportedPeers(stored, p)
		} else {
			m.reportedPeers[p.Address] = p
		}
	}
	m.purgeReportedPeers()

	m.foldIntoPersistedPeers()
	return nil
}

// ReportedPeers - snapshot of the reported peer cache
func (m *Manager) ReportedPeers() []ReportedPeer {
	out := make([]ReportedPeer, 0, len(m.reportedPeers))
	for _, p := range m.reportedPeers {
		out = append(out, p)
	}
	return out
}

// PersistedPeers - snapshot of the persisted peer set
func (m *Manager) PersistedPeers() []ReportedPeer {
	out := make([]ReportedPeer, 0, len(m.persistedPeers))
	for _, p := range m.persistedPeers {
		out = append(out, p)
	}
	return out
}

// LivePeers - records for the currently confirmed connections
func (m *Manager) LivePeers() []ReportedPeer {
	confirmed := m.node.ConfirmedConnections()
	out := make([]ReportedPeer, 0, len(confirmed))
	for _, c := range confirmed {
		if address, ok := c.PeerAddress(); ok {
			out = append(out, ReportedPeer{
				Address:      address,
				LastActivity: c.LastActivity(),
			})
		}
	}
	return out
}

// drop uniformly random entries until the cache fits
func (m *Manager) purgeReportedPeers() {
	excess := len(m.reportedPeers) - maxReportedPeers
	if excess <= 0 {
		return
	}
	addresses := make([]network.Address, 0, len(m.reportedPeers))
	for address := range m.reportedPeers {
		addresses = append(addresses, address)
	}
	m.rand.Shuffle(len(addresses), func(i int, j int) {
		addresses[i], addresses[j] = addresses[j], addresses[i]
	})
	for _, address := range addresses[:excess] {
		delete(m.reportedPeers, address)
	}
	m.log.Debugf("reported peer cache purged %d entries", excess)
}

// fold reported and live peers into the durable set, trim, save
func (m *Manager) foldIntoPersistedPeers() {
	m.foldPeers()

	if nil != m.store {
		snapshot := m.PersistedPeers()
		store := m.store
		go func() {
			if err := store.Save(snapshot); nil != err {
				m.log.Errorf("save persisted peers error: %s", err)
			}
		}()
	}
}

func (m *Manager) foldPeers() {
	for address, p := range m.reportedPeers {
		if stored, ok := m.persistedPeers[address]; ok {
			m.persistedPeers[address] = mergeReportedPeers(stored, p)
		} else {
			m.persistedPeers[address] = p
		}
	}
	for _, p := range m.LivePeers() {
		m.persistedPeers[p.Address] = p
	}
	m.trimPersistedPeers()
}

// half of the excess goes at random, the rest oldest first; records
// without a timestamp count as oldest
func (m *Manager) trimPersistedPeers() {
	excess := len(m.persistedPeers) - maxPersistedPeers
	if excess <= 0 {
		return
	}

	addresses := make([]network.Address, 0, len(m.persistedPeers))
	for address := range m.persistedPeers {
		addresses = append(addresses, address)
	}
	m.rand.Shuffle(len(addresses), func(i int, j int) {
		addresses[i], addresses[j] = addresses[j], addresses[i]
	})
	half := excess / 2
	for _, address := range addresses[:half] {
		delete(m.persistedPeers, address)
	}

	remainder := excess - half
	rest := make([]ReportedPeer, 0, len(m.persistedPeers))
	for _, p := range m.persistedPeers {
		rest = append(rest, p)
	}
	sort.SliceStable(rest, func(i int, j int) bool {
		return rest[i].LastActivity.Before(rest[j].LastActivity)
	})
	for _, p := range rest[:remainder] {
		delete(m.persistedPeers, p.Address)
	}
	m.log.Debugf("persisted peer set trimmed %d entries", excess)
}
