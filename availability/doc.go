// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package availability - pre-trade offer availability check
//
// before taking an offer the taker asks the offer owner whether the
// offer is still live; a positive answer lets the trade protocol
// start, anything else resets the local offer state
package availability
