// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/escrownet/escrowd/chain"
	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/network"
)

// basic defaults, relative paths hang off the data directory
const (
	defaultDataDirectory = "."
	defaultDatabase      = "escrowd.leveldb"
	defaultKeyFile       = "escrowd.key"
	defaultPort          = 2130

	defaultLogDirectory = "log"
	defaultLogFile      = "escrowd.log"
	defaultLogCount     = 10
	defaultLogSize      = 1048576
)

// NodeType - peer overlay settings
type NodeType struct {
	Port               int      `gluamapper:"port" json:"port"`
	MaximumConnections int      `gluamapper:"maximum_connections" json:"maximum_connections"`
	SeedNodes          []string `gluamapper:"seed_nodes" json:"seed_nodes"`
	NodesDomain        string   `gluamapper:"nodes_domain" json:"nodes_domain"`
	AnnounceAddress    string   `gluamapper:"announce_address" json:"announce_address"`
}

// TradingType - escrow trade settings
type TradingType struct {
	PayoutAddress   string `gluamapper:"payout_address" json:"payout_address"`
	SecurityDeposit int64  `gluamapper:"security_deposit" json:"security_deposit"`
}

// Configuration - the full parsed configuration file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Chain         string               `gluamapper:"chain" json:"chain"`
	Database      string               `gluamapper:"database" json:"database"`
	KeyFile       string               `gluamapper:"key_file" json:"key_file"`
	Node          NodeType             `gluamapper:"node" json:"node"`
	Trading       TradingType          `gluamapper:"trading" json:"trading"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - read the file, apply defaults and validate
func GetConfiguration(fileName string) (*Configuration, error) {

	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		Chain:         chain.Live,
		Database:      defaultDatabase,
		KeyFile:       defaultKeyFile,
		Node: NodeType{
			Port: defaultPort,
		},
		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		},
	}

	if err := ParseConfigurationFile(fileName, options); nil != err {
		return nil, err
	}

	if !chain.Valid(options.Chain) {
		return nil, fault.ErrInvalidChain
	}
	if options.Node.Port < 1 || options.Node.Port > 65535 {
		return nil, fault.ErrInvalidPortNumber
	}
	for _, seed := range options.Node.SeedNodes {
		if _, err := network.NewAddress(seed); nil != err {
			return nil, err
		}
	}
	if "" != options.Node.AnnounceAddress {
		if _, err := network.NewAddress(options.Node.AnnounceAddress); nil != err {
			return nil, err
		}
	}

	// resolve any relative paths against the configuration file
	baseDirectory := filepath.Dir(fileName)
	options.DataDirectory = ensureAbsolute(baseDirectory, options.DataDirectory)
	options.Database = ensureAbsolute(options.DataDirectory, options.Database)
	options.KeyFile = ensureAbsolute(options.DataDirectory, options.KeyFile)
	options.Logging.Directory = ensureAbsolute(options.DataDirectory, options.Logging.Directory)
	if "" != options.PidFile {
		options.PidFile = ensureAbsolute(options.DataDirectory, options.PidFile)
	}

	return options, nil
}

// SeedAddresses - the effective seed list
//
// explicit seed_nodes win, otherwise the chain's builtin list is
// used
func (c *Configuration) SeedAddresses() []network.Address {
	seeds := c.Node.SeedNodes
	if 0 == len(seeds) {
		seeds = chain.SeedAddresses(c.Chain)
	}
	out := make([]network.Address, 0, len(seeds))
	for _, seed := range seeds {
		out = append(out, network.MustNewAddress(seed))
	}
	return out
}

func ensureAbsolute(directory string, filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(directory, filePath)
}
