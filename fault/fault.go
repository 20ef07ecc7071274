// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type NetworkError GenericError
type TimeoutError GenericError
type AbuseError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised        = ExistsError("already initialised")
	ErrAvailabilityCanceled      = ProcessError("availability check canceled")
	ErrAvailabilityTimeout       = TimeoutError("availability check timeout")
	ErrConnectionAlreadyClosed   = ProcessError("connection already closed")
	ErrConnectionNotFound        = NotFoundError("connection not found")
	ErrHandshakeAlreadyStarted   = ProcessError("handshake already started")
	ErrHandshakeTimeout          = TimeoutError("handshake timeout")
	ErrInvalidChain              = InvalidError("invalid chain")
	ErrInvalidDnsTxtRecord       = InvalidError("invalid dns txt record")
	ErrInvalidKeyFile            = InvalidError("invalid key file")
	ErrInvalidKeyLength          = InvalidError("invalid key length")
	ErrInvalidLoggerChannel      = InvalidError("invalid logger channel")
	ErrInvalidNodeAddress        = InvalidError("invalid node address")
	ErrInvalidOfferAmount        = InvalidError("invalid offer amount")
	ErrInvalidOfferMinimumAmount = InvalidError("invalid offer minimum amount")
	ErrInvalidOfferPrice         = InvalidError("invalid offer price")
	ErrInvalidPayoutSplit        = InvalidError("invalid payout split")
	ErrInvalidPortNumber         = InvalidError("invalid port number")
	ErrInvalidSignature          = InvalidError("invalid signature")
	ErrInvalidStructPointer      = InvalidError("invalid struct pointer")
	ErrKeyFileAlreadyExists      = ExistsError("key file already exists")
	ErrMessageTooLarge           = AbuseError("message too large")
	ErrMissingDepositTransaction = InvalidError("missing deposit transaction")
	ErrMissingParameters         = InvalidError("missing parameters")
	ErrNotConnected              = NetworkError("not connected")
	ErrNotInitialised            = NotFoundError("not initialised")
	ErrOfferExpired              = ProcessError("offer expired")
	ErrOfferNotFound             = NotFoundError("offer not found")
	ErrPeerReportFlood           = AbuseError("peer report flood")
	ErrSendFailed                = NetworkError("send failed")
	ErrTaskAlreadyCompleted      = ProcessError("task already completed")
	ErrTradeIdMismatch           = ProcessError("trade id mismatch")
	ErrTradeNotFound             = NotFoundError("trade not found")
	ErrTradeRoleMismatch         = ProcessError("trade role mismatch")
	ErrUnexpectedMessage         = ProcessError("unexpected message")
	ErrWrongNetworkForChain      = InvalidError("wrong network for chain")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e NetworkError) Error() string  { return string(e) }
func (e TimeoutError) Error() string  { return string(e) }
func (e AbuseError) Error() string    { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrNetwork(e error) bool  { _, ok := e.(NetworkError); return ok }
func IsErrTimeout(e error) bool  { _, ok := e.(TimeoutError); return ok }
func IsErrAbuse(e error) bool    { _, ok := e.(AbuseError); return ok }
