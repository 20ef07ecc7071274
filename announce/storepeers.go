// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package announce

import (
	"encoding/json"

	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/storage"
)

// PeerStore - durable storage for the persisted peer set
//
// a nil PeerStore is allowed and turns persistence off
type PeerStore interface {
	Load() ([]ReportedPeer, error)
	Save(peers []ReportedPeer) error
}

// PoolPeerStore - peer records in a storage pool, one per address
type PoolPeerStore struct {
	pool *storage.PoolHandle
}

// NewPoolPeerStore - wrap a storage pool as a PeerStore
func NewPoolPeerStore(pool *storage.PoolHandle) *PoolPeerStore {
	return &PoolPeerStore{pool: pool}
}

// Load - read back all stored peer records
//
// undecodable records are skipped, not fatal
func (s *PoolPeerStore) Load() ([]ReportedPeer, error) {
	peers := []ReportedPeer{}
	s.pool.Range(func(key []byte, value []byte) bool {
		var p ReportedPeer
		if err := json.Unmarshal(value, &p); nil == err && !p.Address.IsZero() {
			peers = append(peers, p)
		}
		return true
	})
	return peers, nil
}

// Save - replace the stored set with the given snapshot
func (s *PoolPeerStore) Save(peers []ReportedPeer) error {

	keep := make(map[string]struct{}, len(peers))
	for _, p := range peers {
		data, err := json.Marshal(p)
		if nil != err {
			return err
		}
		key := []byte(p.Address.String())
		keep[string(key)] = struct{}{}
		if err := s.pool.Put(key, data); nil != err {
			return err
		}
	}

	stale := [][]byte{}
	s.pool.Range(func(key []byte, value []byte) bool {
		if _, ok := keep[string(key)]; !ok {
			k := make([]byte, len(key))
			copy(k, key)
			stale = append(stale, k)
		}
		return true
	})
	for _, key := range stale {
		if err := s.pool.Delete(key); nil != err {
			return err
		}
	}
	return nil
}

// ensure the interface is met
var _ PeerStore = (*PoolPeerStore)(nil)
var _ network.ConnectionListener = (*Manager)(nil)
var _ network.MessageListener = (*Manager)(nil)
