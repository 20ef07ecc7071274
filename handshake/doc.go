// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package handshake - bootstrap data exchange with one peer
//
// a requester sends a data request carrying a random nonce and waits
// for the matching response; exactly one of the success or failure
// callbacks fires, never both
package handshake
