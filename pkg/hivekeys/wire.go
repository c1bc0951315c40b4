package hivekeys

import (
	"fmt"

	"github.com/mahdiidarabi/hivekeys/pkg/base58check"
)

// WireSignature is the 65-byte r ‖ s ‖ parity layout exchanged with other
// signing libraries.  The last byte is always 0 or 1.
type WireSignature [base58check.SignatureLen]byte

// NewWireSignature validates a 65-byte buffer and normalizes its recovery
// byte to a parity.
func NewWireSignature(b []byte) (WireSignature, error) {
	var w WireSignature
	if len(b) != len(w) {
		str := fmt.Sprintf("wire signature is %d bytes, expected %d", len(b),
			len(w))
		return w, base58check.Error{Err: ErrInvalidLength, Description: str}
	}
	parity, err := NormalizeRecoveryMarker(uint64(b[64]))
	if err != nil {
		return w, err
	}

	copy(w[:], b)
	w[64] = parity
	return w, nil
}

// Wire converts sig to the wire layout.
func (sig Signature) Wire() (WireSignature, error) {
	var w WireSignature
	if _, _, err := sig.scalars(); err != nil {
		return w, err
	}
	parity, err := sig.Parity()
	if err != nil {
		return w, err
	}

	copy(w[:32], sig.R[:])
	copy(w[32:64], sig.S[:])
	w[64] = parity
	return w, nil
}

// Signature converts w back into a Signature with a raw parity marker.
func (w WireSignature) Signature() Signature {
	var sig Signature
	copy(sig.R[:], w[:32])
	copy(sig.S[:], w[32:64])
	sig.V = uint64(w[64])
	return sig
}

// Bytes returns a copy of the 65-byte buffer.
func (w WireSignature) Bytes() []byte {
	b := make([]byte, len(w))
	copy(b, w[:])
	return b
}

// String returns the K1 base58check encoding of the buffer.
func (w WireSignature) String() string {
	// The buffer length is fixed, so encoding cannot fail.
	s, _ := base58check.Encode(w[:], base58check.K1)
	return s
}

// ParseWireSignature reverses String.
func ParseWireSignature(text string) (WireSignature, error) {
	b, err := base58check.Decode(text, base58check.K1)
	if err != nil {
		return WireSignature{}, err
	}
	return NewWireSignature(b)
}
