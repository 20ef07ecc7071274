// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// PoolHandle - one prefix-keyed region of the database
type PoolHandle struct {
	prefix byte
	db     *leveldb.DB
}

// prefix the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, 1+len(key))
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value pair
func (p *PoolHandle) Put(key []byte, value []byte) error {
	return p.db.Put(p.prefixKey(key), value, nil)
}

// Get - fetch a value, nil if not found
func (p *PoolHandle) Get(key []byte) []byte {
	value, err := p.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	if nil != err {
		return nil
	}
	return value
}

// Has - check for a key
func (p *PoolHandle) Has(key []byte) bool {
	has, _ := p.db.Has(p.prefixKey(key), nil)
	return has
}

// Delete - remove a key
func (p *PoolHandle) Delete(key []byte) error {
	return p.db.Delete(p.prefixKey(key), nil)
}

// Range - iterate over all key/value pairs of the pool
// iteration stops when fn returns false
func (p *PoolHandle) Range(fn func(key []byte, value []byte) bool) {
	iter := p.db.NewIterator(ldb_util.BytesPrefix([]byte{p.prefix}), nil)
	defer iter.Release()
	for iter.Next() {
		key := make([]byte, len(iter.Key())-1)
		copy(key, iter.Key()[1:])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if !fn(key, value) {
			return
		}
	}
}
