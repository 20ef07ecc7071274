// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/escrownet/escrowd/configuration"
	"github.com/escrownet/escrowd/keypair"
)

const identityKeyFilename = "escrowd.key"

// setup command handler
//
// commands that run to create the identity key file; these commands
// cannot access any internal database or states or the configuration
// file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-identity", "id":
		keyFilename := getFilenameWithDirectory(arguments, identityKeyFilename)

		identity, err := keypair.Generate()
		if nil != err {
			fmt.Printf("generate identity: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}
		if err := identity.Save(keyFilename); nil != err {
			fmt.Printf("generate identity: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated identity: %q\n", keyFilename)
		fmt.Printf("fingerprint: %s\n", identity.Fingerprint())

	case "fingerprint", "fp":
		keyFilename := getFilenameWithDirectory(arguments, identityKeyFilename)

		identity, err := keypair.Load(keyFilename)
		if nil != err {
			fmt.Printf("load identity: %q error: %s\n", keyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("fingerprint: %s\n", identity.Fingerprint())

	case "dns-txt", "txt":
		return false // defer processing until configuration is read

	case "seed-nodes", "seeds":
		return false // defer processing until configuration is read

	case "start", "run":
		return false // continue processing

	case "config-test", "cfg":
		return false

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                 (h)      - display this message\n\n")
		fmt.Printf("  version              (v)      - display version string\n\n")

		fmt.Printf("  gen-identity [DIR]   (id)     - create the identity key in: %q\n", "DIR/"+identityKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  fingerprint [DIR]    (fp)     - display the identity fingerprint from: %q\n", "DIR/"+identityKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  dns-txt              (txt)    - display the data to put in a dns TXT record\n")
		fmt.Printf("\n")

		fmt.Printf("  seed-nodes           (seeds)  - display the effective seed node list\n")
		fmt.Printf("\n")

		fmt.Printf("  start                (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                  for convenience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test          (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *configuration.Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "dns-txt", "txt":
		if "" == options.Node.AnnounceAddress {
			exitwithstatus.Message("error: node.announce_address is not configured")
		}
		fmt.Printf("%s TXT \"escrow=%s\"\n", options.Node.NodesDomain, options.Node.AnnounceAddress)

	case "seed-nodes", "seeds":
		for _, seed := range options.SeedAddresses() {
			fmt.Printf("%s\n", seed)
		}

	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default: // unknown commands fall through
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// get the working directory; if not set in the arguments
// it's set to the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	directory := "."
	if len(arguments) >= 1 && "" != arguments[0] {
		directory = arguments[0]
	}
	return filepath.Join(directory, name)
}
