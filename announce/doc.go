// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package announce - peer registry and admission control
//
// keeps the live connection count inside a target band, classifies
// connections, and maintains the gossip caches of known but
// unconnected peers; all decision logic runs on the node dispatcher
package announce
