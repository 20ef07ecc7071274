// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "escrow-cli"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate an identity key pair",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: " save the private seed to `FILE`",
				},
			},
			Action: runGenerate,
		},
		{
			Name:      "fingerprint",
			Usage:     "display the fingerprint of an identity key file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*identity key `FILE`",
				},
			},
			Action: runFingerprint,
		},
		{
			Name:      "seed-nodes",
			Usage:     "display the builtin seed nodes for a chain",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "chain, c",
					Value: "live",
					Usage: " chain `NAME` [live|testing|local]",
				},
			},
			Action: runSeedNodes,
		},
		{
			Name:      "payout",
			Usage:     "compute the dispute payout split for a trade",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  "amount, a",
					Value: 0,
					Usage: "*trade amount `NUMBER`",
				},
				cli.Int64Flag{
					Name:  "deposit, d",
					Value: 0,
					Usage: "*security deposit per side `NUMBER`",
				},
				cli.Int64Flag{
					Name:  "fee, F",
					Value: 0,
					Usage: " arbitrator fee `NUMBER`",
				},
				cli.StringFlag{
					Name:  "winner, w",
					Value: "",
					Usage: "*dispute winner [buyer|seller|stalemate]",
				},
				cli.StringFlag{
					Name:  "fee-policy, p",
					Value: "loser",
					Usage: " fee policy [loser|split|waived]",
				},
			},
			Action: runPayout,
		},
		{
			Name:  "version",
			Usage: "display escrow-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
