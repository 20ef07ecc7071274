// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/escrownet/escrowd/keypair"
)

func runFingerprint(c *cli.Context) error {

	fileName := c.String("file")
	if "" == fileName {
		return fmt.Errorf("missing file argument")
	}

	identity, err := keypair.Load(fileName)
	if nil != err {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s\n", identity.Fingerprint())
	return nil
}
