package hivekeys

import (
	"fmt"

	"github.com/mahdiidarabi/hivekeys/pkg/base58check"
)

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// Codec error kinds surface unchanged from the base58check package.
const (
	ErrInvalidLength      = base58check.ErrInvalidLength
	ErrChecksumMismatch   = base58check.ErrChecksumMismatch
	ErrInvalidNetworkByte = base58check.ErrInvalidNetworkByte
)

// These constants are used to identify a specific Error.
const (
	// ErrNonASCIIInput indicates a credential field contains bytes outside
	// of the ASCII range.
	ErrNonASCIIInput = ErrorKind("ErrNonASCIIInput")

	// ErrInvalidScalar indicates private key material that is zero or not
	// below the curve order.
	ErrInvalidScalar = ErrorKind("ErrInvalidScalar")

	// ErrInvalidPublicKey indicates bytes that do not decode to a point on
	// the curve.
	ErrInvalidPublicKey = ErrorKind("ErrInvalidPublicKey")

	// ErrInvalidSignature indicates r or s is zero or not below the curve
	// order, or a signature buffer of the wrong shape.
	ErrInvalidSignature = ErrorKind("ErrInvalidSignature")

	// ErrInvalidRecoveryMarker indicates a recovery marker that does not
	// belong to any supported numbering scheme.
	ErrInvalidRecoveryMarker = ErrorKind("ErrInvalidRecoveryMarker")

	// ErrRecovery indicates no public key could be reconstructed from the
	// signature and message.
	ErrRecovery = ErrorKind("ErrRecovery")

	// ErrVerificationMismatch indicates the recovered signer differs from
	// the expected one.  See VerificationError.
	ErrVerificationMismatch = ErrorKind("ErrVerificationMismatch")

	// ErrUnknownChain indicates a chain missing from the address prefix
	// table.
	ErrUnknownChain = ErrorKind("ErrUnknownChain")

	// ErrInvalidAddress indicates an address without the chain's prefix.
	ErrInvalidAddress = ErrorKind("ErrInvalidAddress")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to keys or signatures.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

// VerificationError is returned by the Verify methods.  Actual holds the
// recovered signer and is the zero PublicKey when recovery itself failed, in
// which case Cause carries the reason.
type VerificationError struct {
	Expected PublicKey
	Actual   PublicKey
	Cause    error
}

// Error satisfies the error interface.
func (e *VerificationError) Error() string {
	if e.Actual.IsZero() {
		return fmt.Sprintf("signature verification failed: expected %s, "+
			"no signer recovered: %v", e.Expected, e.Cause)
	}
	return fmt.Sprintf("signature verification failed: expected %s, got %s",
		e.Expected, e.Actual)
}

// Unwrap returns ErrVerificationMismatch.  The recovery failure, if any, is
// reported through Cause rather than the error chain.
func (e *VerificationError) Unwrap() error {
	return ErrVerificationMismatch
}
