// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"fmt"
	"net"
	"strconv"

	"github.com/escrownet/escrowd/fault"
)

// Address - the network identity of a peer
//
// immutable; compares by value
type Address struct {
	Host string
	Port uint16
}

// NewAddress - parse a "host:port" string
func NewAddress(hostPort string) (Address, error) {
	host, portString, err := net.SplitHostPort(hostPort)
	if nil != err {
		return Address{}, fault.ErrInvalidNodeAddress
	}
	if "" == host {
		return Address{}, fault.ErrInvalidNodeAddress
	}
	port, err := strconv.ParseUint(portString, 10, 16)
	if nil != err || 0 == port {
		return Address{}, fault.ErrInvalidPortNumber
	}
	return Address{
		Host: host,
		Port: uint16(port),
	}, nil
}

// MustNewAddress - parse a "host:port" string, panic on error
// for statically known addresses such as seed lists
func MustNewAddress(hostPort string) Address {
	address, err := NewAddress(hostPort)
	if nil != err {
		panic(fmt.Sprintf("network: bad address: %q", hostPort))
	}
	return address
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// IsZero - an unset address
func (a Address) IsZero() bool {
	return "" == a.Host && 0 == a.Port
}
