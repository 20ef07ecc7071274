// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package trade - one escrow instance between two counterparties
//
// a trade progresses monotonically through checkpoint states, every
// reached checkpoint is persisted and never rolled back; all amounts
// are 64 bit integers in base units, never floating point
package trade
