// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the key-value durability service
//
// a single LevelDB database split into prefix-keyed pools; each pool
// is owned by exactly one component
package storage
