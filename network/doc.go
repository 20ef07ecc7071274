// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package network - the point-to-point transport layer
//
// A Node owns a set of live Connections to remote nodes and routes
// protocol messages to registered listeners.  Two implementations are
// provided: a ZeroMQ based one for production and an in-process one
// for tests.  All listener callbacks are delivered on the node's
// dispatcher, never on a transport goroutine.
package network
