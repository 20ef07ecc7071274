// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mailbox - guaranteed eventual delivery of trade messages
//
// every send resolves to exactly one of three outcomes: delivered
// live, stored for later pickup, or fault; the first two both mean
// the peer will eventually observe the message
package mailbox
