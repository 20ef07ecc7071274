// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package announce

import (
	"time"

	"github.com/escrownet/escrowd/network"
)

// ReportedPeer - gossip record: a peer exists, last seen at a time
//
// describes knowledge about a peer, not a live link; a zero
// LastActivity means the reporter did not know a time
type ReportedPeer struct {
	Address      network.Address `json:"address"`
	LastActivity time.Time       `json:"lastActivity"`
}

// merge two records for the same address
//
// both timestamps present: arithmetic mean of the two, rounded down;
// exactly one present: that record wins
func mergeReportedPeers(stored ReportedPeer, incoming ReportedPeer) ReportedPeer {
	switch {
	case !stored.LastActivity.IsZero() && !incoming.LastActivity.IsZero():
		mid := (stored.LastActivity.UnixNano() + incoming.LastActivity.UnixNano()) / 2
		return ReportedPeer{
			Address:      incoming.Address,
			LastActivity: time.Unix(0, mid),
		}
	case incoming.LastActivity.IsZero():
		return stored
	default:
		return incoming
	}
}
