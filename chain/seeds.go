// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"strconv"
	"strings"
)

// well-known network entry nodes
//
// each chain selects only the addresses whose port ends in its
// network id digit
var seedAddresses = []string{
	// live
	"seed1.escrownet.com:3000",
	"seed2.escrownet.com:3010",
	"seed3.escrownet.com:3020",

	// testing
	"seed1.test.escrownet.com:3001",
	"seed2.test.escrownet.com:3011",
	"seed3.test.escrownet.com:3021",

	// local
	"127.0.0.1:3002",
	"127.0.0.1:3012",
	"127.0.0.1:3022",
}

// SeedAddresses - the configured seed addresses for one chain
func SeedAddresses(name string) []string {
	id := NetworkId(name)
	if id < 0 {
		return nil
	}
	digit := strconv.Itoa(id)

	addresses := make([]string, 0, len(seedAddresses))
	for _, a := range seedAddresses {
		if strings.HasSuffix(a, digit) {
			addresses = append(addresses, a)
		}
	}
	return addresses
}
