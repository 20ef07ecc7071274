// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"encoding/json"
	"sync"

	"github.com/escrownet/escrowd/fault"
)

// maximum size of one packed message on the wire
const maximumMessageSize = 4 * 1024 * 1024

// Message - one protocol message
//
// the command names the concrete type for the wire codec
type Message interface {
	Command() string
}

// SenderAddressed - a message carrying the sender's own address
//
// receipt of such a message confirms the remote address of the
// connection it arrived on
type SenderAddressed interface {
	Message
	GetSenderAddress() Address
}

// registry of command → message factory
var registry struct {
	sync.RWMutex
	factories map[string]func() Message
}

// RegisterCommand - make a message type known to the codec
// called from init in the packages defining messages
func RegisterCommand(command string, factory func() Message) {
	registry.Lock()
	defer registry.Unlock()
	if nil == registry.factories {
		registry.factories = make(map[string]func() Message)
	}
	if _, ok := registry.factories[command]; ok {
		panic("network: duplicate command: " + command)
	}
	registry.factories[command] = factory
}

// Pack - encode a message as wire frames: [command, payload]
func Pack(message Message) ([][]byte, error) {
	payload, err := json.Marshal(message)
	if nil != err {
		return nil, err
	}
	if len(payload) > maximumMessageSize {
		return nil, fault.ErrMessageTooLarge
	}
	return [][]byte{[]byte(message.Command()), payload}, nil
}

// Unpack - decode wire frames back into a message
func Unpack(frames [][]byte) (Message, error) {
	if 2 != len(frames) {
		return nil, fault.ErrMissingParameters
	}
	if len(frames[1]) > maximumMessageSize {
		return nil, fault.ErrMessageTooLarge
	}

	registry.RLock()
	factory, ok := registry.factories[string(frames[0])]
	registry.RUnlock()
	if !ok {
		return nil, fault.ErrUnexpectedMessage
	}

	message := factory()
	if err := json.Unmarshal(frames[1], message); nil != err {
		return nil, err
	}
	return message, nil
}
