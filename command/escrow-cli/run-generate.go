// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli"

	"github.com/escrownet/escrowd/keypair"
)

func runGenerate(c *cli.Context) error {

	identity, err := keypair.Generate()
	if nil != err {
		return err
	}

	fileName := c.String("file")
	if "" != fileName {
		if err := identity.Save(fileName); nil != err {
			return err
		}
		if c.GlobalBool("verbose") {
			fmt.Fprintf(c.App.ErrWriter, "saved key file: %q\n", fileName)
		}
	}

	type generated struct {
		Fingerprint string `json:"fingerprint"`
		Seed        string `json:"seed"`
	}
	return printJson(c.App.Writer, generated{
		Fingerprint: identity.Fingerprint(),
		Seed:        base58.Encode(identity.PrivateKey.Seed()),
	})
}
