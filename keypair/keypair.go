// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keypair - node identity keys
package keypair

import (
	"crypto/rand"
	"io/ioutil"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"

	"github.com/escrownet/escrowd/fault"
)

// Keypair - the signing identity of a node
type Keypair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Generate - create a fresh identity
func Generate() (*Keypair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return nil, err
	}
	return &Keypair{
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	}, nil
}

// Fingerprint - short printable identity for logs and gossip
func (k *Keypair) Fingerprint() string {
	return base58.Encode(k.PublicKey)
}

// Sign - sign arbitrary bytes with the node identity
func (k *Keypair) Sign(data []byte) []byte {
	return ed25519.Sign(k.PrivateKey, data)
}

// Verify - check a signature against a public key
func Verify(publicKey []byte, data []byte, signature []byte) error {
	if ed25519.PublicKeySize != len(publicKey) {
		return fault.ErrInvalidKeyLength
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), data, signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}

// Save - write the private seed to a key file
// refuses to overwrite an existing file
func (k *Keypair) Save(fileName string) error {
	if _, err := os.Stat(fileName); nil == err {
		return fault.ErrKeyFileAlreadyExists
	}
	seed := base58.Encode(k.PrivateKey.Seed())
	return ioutil.WriteFile(fileName, []byte(seed+"\n"), 0600)
}

// Load - restore an identity from a key file
func Load(fileName string) (*Keypair, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	seed, err := base58.Decode(strings.TrimSpace(string(data)))
	if nil != err {
		return nil, fault.ErrInvalidKeyFile
	}
	if ed25519.SeedSize != len(seed) {
		return nil, fault.ErrInvalidKeyLength
	}
	privateKey := ed25519.NewKeyFromSeed(seed)
	return &Keypair{
		PublicKey:  privateKey.Public().(ed25519.PublicKey),
		PrivateKey: privateKey,
	}, nil
}
