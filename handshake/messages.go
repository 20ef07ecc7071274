// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handshake

import (
	"time"

	"github.com/escrownet/escrowd/network"
	"github.com/escrownet/escrowd/offer"
)

// wire commands
const (
	CommandPreliminaryDataRequest = "preliminary-data-request"
	CommandUpdateDataRequest      = "update-data-request"
	CommandDataResponse           = "data-response"
)

// PeerInfo - one known peer as carried inside a data response
type PeerInfo struct {
	Address      network.Address `json:"address"`
	LastActivity time.Time       `json:"lastActivity"`
}

// PreliminaryDataRequest - first request of a fresh node
//
// sent before the node has a confirmed own address, so it carries
// none
type PreliminaryDataRequest struct {
	Nonce int64 `json:"nonce"`
}

// Command - wire command name
func (r *PreliminaryDataRequest) Command() string {
	return CommandPreliminaryDataRequest
}

// UpdateDataRequest - request of a node that was online before
type UpdateDataRequest struct {
	SenderAddress network.Address `json:"senderAddress"`
	Nonce         int64           `json:"nonce"`
}

// Command - wire command name
func (r *UpdateDataRequest) Command() string {
	return CommandUpdateDataRequest
}

// GetSenderAddress - lets the transport confirm the remote address
func (r *UpdateDataRequest) GetSenderAddress() network.Address {
	return r.SenderAddress
}

// DataResponse - answer to either request kind
type DataResponse struct {
	RequestNonce int64          `json:"requestNonce"`
	Offers       []*offer.Offer `json:"offers"`
	Peers        []PeerInfo     `json:"peers"`
}

// Command - wire command name
func (r *DataResponse) Command() string {
	return CommandDataResponse
}

func init() {
	network.RegisterCommand(CommandPreliminaryDataRequest, func() network.Message {
		return &PreliminaryDataRequest{}
	})
	network.RegisterCommand(CommandUpdateDataRequest, func() network.Message {
		return &UpdateDataRequest{}
	})
	network.RegisterCommand(CommandDataResponse, func() network.Message {
		return &DataResponse{}
	})
}

var _ network.SenderAddressed = (*UpdateDataRequest)(nil)
