// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade

import (
	"encoding/json"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/storage"
)

// the stored shape of one trade
type record struct {
	Id              string       `json:"id"`
	Role            Role         `json:"role"`
	Amount          int64        `json:"amount"`
	Price           int64        `json:"price"`
	SecurityDeposit int64        `json:"securityDeposit"`
	Date            int64        `json:"date"`
	LockTime        int64        `json:"lockTime"`
	ArbitratorFee   int64        `json:"arbitratorFee"`
	Counterparty    Counterparty `json:"counterparty"`
	OfferFeeTxId    string       `json:"offerFeeTxId"`
	DepositTxId     string       `json:"depositTxId"`
	DepositTx       []byte       `json:"depositTx"`
	PayoutTxId      string       `json:"payoutTxId"`
	PayoutTx        []byte       `json:"payoutTx"`
	State           State        `json:"state"`
	DisputeOpened   bool         `json:"disputeOpened"`
	Faults          []string     `json:"faults"`
}

// rebuild the runtime object from stored fields
//
// listeners are transient and start empty after a load
func loadRecord(r record) *Trade {
	return &Trade{
		Id:              r.Id,
		Role:            r.Role,
		Amount:          r.Amount,
		Price:           r.Price,
		SecurityDeposit: r.SecurityDeposit,
		Date:            r.Date,
		LockTime:        r.LockTime,
		ArbitratorFee:   r.ArbitratorFee,
		Counterparty:    r.Counterparty,
		OfferFeeTxId:    r.OfferFeeTxId,
		DepositTxId:     r.DepositTxId,
		DepositTx:       r.DepositTx,
		PayoutTxId:      r.PayoutTxId,
		PayoutTx:        r.PayoutTx,
		state:           r.State,
		disputeOpened:   r.DisputeOpened,
		faults:          r.Faults,
	}
}

// Store - durable trade records in a storage pool
type Store struct {
	log  *logger.L
	pool *storage.PoolHandle
}

// NewStore - wrap a storage pool
func NewStore(name string, pool *storage.PoolHandle) *Store {
	return &Store{
		log:  logger.New(name),
		pool: pool,
	}
}

// Save - persist the trade's current checkpoint and fields
func (s *Store) Save(t *Trade) error {
	data, err := json.Marshal(record{
		Id:              t.Id,
		Role:            t.Role,
		Amount:          t.Amount,
		Price:           t.Price,
		SecurityDeposit: t.SecurityDeposit,
		Date:            t.Date,
		LockTime:        t.LockTime,
		ArbitratorFee:   t.ArbitratorFee,
		Counterparty:    t.Counterparty,
		OfferFeeTxId:    t.OfferFeeTxId,
		DepositTxId:     t.DepositTxId,
		DepositTx:       t.DepositTx,
		PayoutTxId:      t.PayoutTxId,
		PayoutTx:        t.PayoutTx,
		State:           t.State(),
		DisputeOpened:   t.DisputeOpened(),
		Faults:          t.Faults(),
	})
	if nil != err {
		return err
	}
	s.log.Debugf("saving trade %s at %s", t.Id, t.State())
	return s.pool.Put([]byte(t.Id), data)
}

// Load - rebuild one trade from storage
func (s *Store) Load(id string) (*Trade, error) {
	data := s.pool.Get([]byte(id))
	if nil == data {
		return nil, fault.ErrTradeNotFound
	}
	var r record
	if err := json.Unmarshal(data, &r); nil != err {
		return nil, err
	}
	return loadRecord(r), nil
}

// Delete - drop one stored trade
func (s *Store) Delete(id string) error {
	return s.pool.Delete([]byte(id))
}

// All - rebuild every stored trade
func (s *Store) All() []*Trade {
	trades := []*Trade{}
	s.pool.Range(func(key []byte, value []byte) bool {
		var r record
		if err := json.Unmarshal(value, &r); nil == err && "" != r.Id {
			trades = append(trades, loadRecord(r))
		}
		return true
	})
	return trades
}
