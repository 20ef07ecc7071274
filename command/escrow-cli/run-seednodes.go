// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/escrownet/escrowd/chain"
)

func runSeedNodes(c *cli.Context) error {

	name := c.String("chain")
	if !chain.Valid(name) {
		return fmt.Errorf("chain: %q can only be live/testing/local", name)
	}

	for _, seed := range chain.SeedAddresses(name) {
		fmt.Fprintf(c.App.Writer, "%s\n", seed)
	}
	return nil
}
