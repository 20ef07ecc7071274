// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package protocol - role specialized task chains driving one trade
//
// four roles share one execution engine and one state enum; a chain
// runs strictly in order, a failing task aborts the remainder and
// records the fault on the trade, reached checkpoints are never
// rolled back
package protocol
