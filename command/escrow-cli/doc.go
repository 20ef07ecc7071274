// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command-line tool for escrow network housekeeping
//
// identity key handling, seed node enquiries and offline dispute
// payout calculation
package main
