// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade

// Role - which of the four fixed positions this node holds
type Role int

// the four trade roles
const (
	BuyerAsOfferer Role = iota
	BuyerAsTaker
	SellerAsOfferer
	SellerAsTaker
)

// IsBuyer - the node pays fiat and receives the asset
func (r Role) IsBuyer() bool {
	return BuyerAsOfferer == r || BuyerAsTaker == r
}

// IsOfferer - the node created the offer being traded
func (r Role) IsOfferer() bool {
	return BuyerAsOfferer == r || SellerAsOfferer == r
}

func (r Role) String() string {
	switch r {
	case BuyerAsOfferer:
		return "BUYER_AS_OFFERER"
	case BuyerAsTaker:
		return "BUYER_AS_TAKER"
	case SellerAsOfferer:
		return "SELLER_AS_OFFERER"
	case SellerAsTaker:
		return "SELLER_AS_TAKER"
	default:
		return "UNKNOWN_ROLE"
	}
}
