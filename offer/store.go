// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package offer

import (
	"time"

	"github.com/bitmark-inc/logger"
	gocache "github.com/patrickmn/go-cache"

	"github.com/escrownet/escrowd/network"
)

// sweep interval for lapsed entries
const cleanupInterval = time.Minute

// Store - the replicated offer set of one node
//
// entries lapse after the offer TTL unless refreshed by a repeated
// add from the owner
type Store struct {
	log   *logger.L
	cache *gocache.Cache
}

// NewStore - create an empty offer store
func NewStore(name string) *Store {
	return &Store{
		log:   logger.New(name),
		cache: gocache.New(TTL, cleanupInterval),
	}
}

// Add - merge one offer, tagged with the address it came from
// re-adding an already known offer refreshes its TTL
func (s *Store) Add(o *Offer, from network.Address) {
	if err := o.Validate(); nil != err {
		s.log.Warnf("rejecting offer %s from %s: %s", o.Id, from, err)
		return
	}
	s.cache.Set(o.Id, o, TTL)
	s.log.Debugf("offer %s from %s stored", o.Id, from)
}

// Get - fetch one offer by id
func (s *Store) Get(id string) (*Offer, bool) {
	item, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return item.(*Offer), true
}

// Remove - drop one offer
func (s *Store) Remove(id string) {
	s.cache.Delete(id)
}

// All - snapshot of every live offer
func (s *Store) All() []*Offer {
	items := s.cache.Items()
	offers := make([]*Offer, 0, len(items))
	for _, item := range items {
		offers = append(offers, item.Object.(*Offer))
	}
	return offers
}

// Count - number of live offers
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
