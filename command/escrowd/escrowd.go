// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/announce"
	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/handshake"
	"github.com/escrownet/escrowd/mailbox"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
	"github.com/escrownet/escrowd/protocol"
	"github.com/escrownet/escrowd/trade"
	"github.com/escrownet/escrowd/wallet"
)

// networkData - payload for answering data requests
//
// offers come from the local offer book, peers are the live
// connections plus whatever gossip has accumulated
type networkData struct {
	offers *offer.Store
	peers  *announce.Manager
}

func (n *networkData) NetworkData() ([]*offer.Offer, []handshake.PeerInfo) {
	live := n.peers.LivePeers()
	reported := n.peers.ReportedPeers()
	peerInfos := make([]handshake.PeerInfo, 0, len(live)+len(reported))
	for _, p := range live {
		peerInfos = append(peerInfos, handshake.PeerInfo{
			Address:      p.Address,
			LastActivity: p.LastActivity,
		})
	}
	for _, p := range reported {
		peerInfos = append(peerInfos, handshake.PeerInfo{
			Address:      p.Address,
			LastActivity: p.LastActivity,
		})
	}
	return n.offers.All(), peerInfos
}

// bootstrap - request network data from each seed in turn until one
// answers, then merge the response into the local stores
//
// a node that already knows its own address sends the update request
// so the seed can confirm the inbound link, a fresh node sends the
// preliminary request
//
// must run on the dispatcher
func bootstrap(log *logger.L, node network.Node, dispatcher *dispatch.Dispatcher, peers *announce.Manager, offers *offer.Store) {

	seeds := []network.Address{}
	for _, seed := range peers.SeedNodes() {
		if !peers.IsSelf(seed) {
			seeds = append(seeds, seed)
		}
	}
	if 0 == len(seeds) {
		log.Warn("no usable seed nodes")
		return
	}

	kind := handshake.Preliminary
	if _, ok := node.Address(); ok {
		kind = handshake.Update
	}

	var trySeed func(i int)
	trySeed = func(i int) {
		if i >= len(seeds) {
			log.Error("all seed nodes failed")
			return
		}
		seed := seeds[i]
		log.Infof("bootstrapping from seed: %s", seed)

		handshake.New(node, dispatcher, seed, 0).Request(kind,
			func(result handshake.Result) {
				log.Infof("seed %s answered: %d offers, %d peers", seed, len(result.Offers), len(result.Peers))

				for _, o := range result.Offers {
					offers.Add(o, seed)
				}

				incoming := make([]announce.ReportedPeer, 0, len(result.Peers))
				for _, p := range result.Peers {
					incoming = append(incoming, announce.ReportedPeer{
						Address:      p.Address,
						LastActivity: p.LastActivity,
					})
				}
				if err := peers.AddToReportedPeers(incoming, node.ConnectionTo(seed)); nil != err {
					log.Errorf("merge seed peers error: %s", err)
				}
			},
			func(err error) {
				log.Warnf("seed %s failed: %s", seed, err)
				trySeed(i + 1)
			})
	}
	trySeed(0)
}

// resumeTrades - restart the engine for every unfinished trade
//
// stored trades that already reached the terminal state are left
// alone; the rest get their protocol reattached and any mailbox
// messages replayed
//
// must run on the dispatcher
func resumeTrades(log *logger.L, node network.Node, trades *trade.Store, sender *mailbox.Sender,
	mailroom *mailbox.Store, signer wallet.SigningService) []*protocol.Protocol {

	ownAddress, _ := node.Address()

	engines := []*protocol.Protocol{}
	for _, t := range trades.All() {
		if t.State().IsTerminal() {
			continue
		}
		log.Infof("resuming trade: %s role: %s state: %s", t.Id, t.Role, t.State())
		engine := protocol.New("protocol", t, trades, sender, mailroom, signer, ownAddress)
		engine.AttachTo(node)
		engine.ProcessMailbox()
		engines = append(engines, engine)
	}
	return engines
}
