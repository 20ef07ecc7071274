// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package availability

import (
	"github.com/escrownet/escrowd/network"
)

// wire commands
const (
	CommandOfferAvailabilityRequest  = "offer-availability-request"
	CommandOfferAvailabilityResponse = "offer-availability-response"
)

// OfferAvailabilityRequest - is the offer still live
type OfferAvailabilityRequest struct {
	OfferId       string          `json:"offerId"`
	SenderAddress network.Address `json:"senderAddress"`
}

// Command - wire command name
func (r *OfferAvailabilityRequest) Command() string {
	return CommandOfferAvailabilityRequest
}

// GetSenderAddress - lets the transport confirm the remote address
func (r *OfferAvailabilityRequest) GetSenderAddress() network.Address {
	return r.SenderAddress
}

// OfferAvailabilityResponse - the owner's answer
type OfferAvailabilityResponse struct {
	OfferId     string `json:"offerId"`
	IsAvailable bool   `json:"isAvailable"`
}

// Command - wire command name
func (r *OfferAvailabilityResponse) Command() string {
	return CommandOfferAvailabilityResponse
}

func init() {
	network.RegisterCommand(CommandOfferAvailabilityRequest, func() network.Message {
		return &OfferAvailabilityRequest{}
	})
	network.RegisterCommand(CommandOfferAvailabilityResponse, func() network.Message {
		return &OfferAvailabilityResponse{}
	})
}

var _ network.SenderAddressed = (*OfferAvailabilityRequest)(nil)
