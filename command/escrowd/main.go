// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/announce"
	"github.com/escrownet/escrowd/availability"
	"github.com/escrownet/escrowd/background"
	"github.com/escrownet/escrowd/configuration"
	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/handshake"
	"github.com/escrownet/escrowd/keypair"
	"github.com/escrownet/escrowd/mailbox"
	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
	"github.com/escrownet/escrowd/storage"
	"github.com/escrownet/escrowd/trade"
	"github.com/escrownet/escrowd/wallet"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := configuration.GetConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("chain: %s", theConfiguration.Chain)
	log.Infof("database: %q", theConfiguration.Database)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// node identity
	identity, err := keypair.Load(theConfiguration.KeyFile)
	if nil != err {
		log.Criticalf("key file: %q error: %s", theConfiguration.KeyFile, err)
		exitwithstatus.Message("%s: cannot load key file: %q  error: %s  (create one with: %s gen-identity)", program, theConfiguration.KeyFile, err, program)
	}
	log.Infof("node identity: %s", identity.Fingerprint())

	// single decision thread, all peer logic runs on it
	dispatcher := dispatch.New("dispatcher")

	// transport endpoint
	listenAddress := network.Address{Port: uint16(theConfiguration.Node.Port)}
	addressKnown := false
	if "" != theConfiguration.Node.AnnounceAddress {
		listenAddress = network.MustNewAddress(theConfiguration.Node.AnnounceAddress)
		addressKnown = true
	}
	node, err := network.NewZmqNode("node", listenAddress, dispatcher, addressKnown)
	if nil != err {
		log.Criticalf("node initialise error: %s", err)
		exitwithstatus.Message("node initialise error: %s", err)
	}

	// peer registry
	peers := announce.New("announce", node, dispatcher, announce.NewPoolPeerStore(storage.Pool.Peers), announce.Config{
		MaxConnections: theConfiguration.Node.MaximumConnections,
		SeedAddresses:  theConfiguration.SeedAddresses(),
	})

	// offer book and trade records
	offers := offer.NewStore("offers")
	trades := trade.NewStore("trades", storage.Pool.Trades)

	// mailbox for offline trade peers
	mailroom := mailbox.NewStore("mailbox")

	// answer data requests and availability checks
	_ = handshake.NewResponder(node, dispatcher, &networkData{
		offers: offers,
		peers:  peers,
	})
	_ = availability.NewResponder(node, offers)

	sender := mailbox.NewSender("sender", node, mailroom)
	signer := wallet.NewStubSigner(dispatcher)

	// start background processes
	processes := background.Processes{
		dispatcher,
		node,
	}
	if "" != theConfiguration.Node.NodesDomain {
		processes = append(processes, announce.NewDNSLookup(theConfiguration.Node.NodesDomain, peers))
	}
	backgrounds := background.Start(processes, dispatcher)
	defer backgrounds.Stop()

	// connect to the network, then restart unfinished trades
	dispatcher.Post(func() {
		bootstrap(log, node, dispatcher, peers, offers)
		resumeTrades(log, node, trades, sender, mailroom, signer)
	})

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	dispatcher.Do(func() {
		peers.SavePeers()
	})
}
