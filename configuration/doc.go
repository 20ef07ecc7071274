// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - the Lua configuration file reader
//
// the configuration is a Lua program whose last value is a table;
// this allows defaults, includes and computed values in the file
// itself while the daemon only sees the final table
package configuration
