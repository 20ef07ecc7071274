// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/fault"
	"github.com/escrownet/escrowd/network"
)

// message used by the transport tests
type pingMessage struct {
	Text          string
	SenderAddress network.Address
}

func (m *pingMessage) Command() string { return "test-ping" }

func (m *pingMessage) GetSenderAddress() network.Address { return m.SenderAddress }

func init() {
	network.RegisterCommand("test-ping", func() network.Message { return &pingMessage{} })
}

func TestPackUnpack(t *testing.T) {
	sent := &pingMessage{Text: "hello"}
	frames, err := network.Pack(sent)
	assert.NoError(t, err, "pack")
	assert.Equal(t, 2, len(frames), "frame count")
	assert.Equal(t, "test-ping", string(frames[0]), "command frame")

	received, err := network.Unpack(frames)
	assert.NoError(t, err, "unpack")
	assert.Equal(t, sent, received, "round trip")
}

func TestUnpackUnknownCommand(t *testing.T) {
	_, err := network.Unpack([][]byte{[]byte("no-such-command"), []byte("{}")})
	assert.Equal(t, fault.ErrUnexpectedMessage, err, "unknown command")

	_, err = network.Unpack([][]byte{[]byte("test-ping")})
	assert.Equal(t, fault.ErrMissingParameters, err, "frame count")
}
