// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package announce

import (
	"net"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/miekg/dns"

	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/network"
)

const (
	tagPrefix      = "escrow="
	minLookupPoll  = 1 * time.Minute
	maxLookupPoll  = 1 * time.Hour
	resolvConfPath = "/etc/resolv.conf"
)

// DNSLookup - background process re-reading seed addresses from DNS
// TXT records of a domain
//
// each record carries "escrow=host:port"; the poll interval follows
// the zone's SOA TTL, clamped to sane bounds
type DNSLookup struct {
	log     *logger.L
	domain  string
	manager *Manager
}

// NewDNSLookup - create the lookup process for a seed domain
func NewDNSLookup(domain string, manager *Manager) *DNSLookup {
	return &DNSLookup{
		log:     logger.New("dns-lookup"),
		domain:  domain,
		manager: manager,
	}
}

// Run - background polling loop
func (d *DNSLookup) Run(args interface{}, shutdown <-chan struct{}) {
	log := d.log
	log.Info("starting…")

	dispatcher := args.(*dispatch.Dispatcher)

loop:
	for {
		d.lookup(dispatcher)

		select {
		case <-shutdown:
			break loop
		case <-time.After(d.pollInterval()):
		}
	}
	log.Info("shutting down…")
}

// poll interval from the zone SOA TTL
func (d *DNSLookup) pollInterval() time.Duration {
	interval := maxLookupPoll

	config, err := dns.ClientConfigFromFile(resolvConfPath)
	if nil != err || 0 == len(config.Servers) {
		return interval
	}

	message := &dns.Msg{}
	message.SetQuestion(dns.Fqdn(d.domain), dns.TypeSOA)
	client := &dns.Client{}
	response, _, err := client.Exchange(message, net.JoinHostPort(config.Servers[0], config.Port))
	if nil != err || nil == response || 0 == len(response.Answer) {
		return interval
	}

	ttl := time.Duration(response.Answer[0].Header().Ttl) * time.Second
	if ttl < minLookupPoll {
		return minLookupPoll
	}
	if ttl > maxLookupPoll {
		return maxLookupPoll
	}
	return ttl
}

func (d *DNSLookup) lookup(dispatcher *dispatch.Dispatcher) {
	log := d.log

	texts, err := net.LookupTXT(d.domain)
	if nil != err {
		log.Errorf("lookup TXT %q error: %s", d.domain, err)
		return
	}

	addresses := []network.Address{}
	for _, t := range texts {
		if !strings.HasPrefix(t, tagPrefix) {
			log.Debugf("ignore TXT record: %q", t)
			continue
		}
		address, err := network.NewAddress(strings.TrimPrefix(t, tagPrefix))
		if nil != err {
			log.Warnf("invalid seed record %q error: %s", t, err)
			continue
		}
		addresses = append(addresses, address)
		log.Infof("seed from DNS: %s", address)
	}
	if 0 == len(addresses) {
		return
	}

	dispatcher.Post(func() {
		for _, address := range addresses {
			d.manager.AddSeedAddress(address)
		}
	})
}
