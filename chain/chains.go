// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

// names of all chains
const (
	Live    = "live"
	Testing = "testing"
	Local   = "local"
)

// Valid - validate a chain name
func Valid(name string) bool {
	switch name {
	case Live, Testing, Local:
		return true
	default:
		return false
	}
}

// NetworkId - the trailing digit convention for listen ports
//
// live ports end in 0, testing in 1, local in 2; a seed address is
// only usable on the chain whose digit its port carries
func NetworkId(name string) int {
	switch name {
	case Live:
		return 0
	case Testing:
		return 1
	case Local:
		return 2
	default:
		return -1
	}
}
