package hivekeys

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mahdiidarabi/hivekeys/pkg/base58check"
)

// DefaultSignaturePrefix marks the legacy textual form of a signature.
const DefaultSignaturePrefix = "SIG_K1_"

// Signature is a recoverable ECDSA signature.  R and S are big-endian and V is
// the recovery marker in any supported RecoveryScheme.  Out of range values
// are representable and rejected with ErrInvalidSignature when used.
type Signature struct {
	R [32]byte
	S [32]byte
	V uint64
}

// NewSignature builds a Signature from big integers.  Values that do not fit
// in 256 bits are rejected.
func NewSignature(r, s *big.Int, v uint64) (Signature, error) {
	var sig Signature
	if r == nil || s == nil || r.Sign() < 0 || s.Sign() < 0 ||
		r.BitLen() > 256 || s.BitLen() > 256 {

		return sig, makeError(ErrInvalidSignature,
			"signature components must be non-negative 256-bit integers")
	}
	r.FillBytes(sig.R[:])
	s.FillBytes(sig.S[:])
	sig.V = v
	return sig, nil
}

// RInt returns R as a big integer.
func (sig Signature) RInt() *big.Int {
	return new(big.Int).SetBytes(sig.R[:])
}

// SInt returns S as a big integer.
func (sig Signature) SInt() *big.Int {
	return new(big.Int).SetBytes(sig.S[:])
}

// Parity returns the recovery parity encoded by V.
func (sig Signature) Parity() (byte, error) {
	return NormalizeRecoveryMarker(sig.V)
}

// scalars validates R and S as values in [1, N-1].
func (sig Signature) scalars() (r, s secp256k1.ModNScalar, err error) {
	if overflow := r.SetBytes(&sig.R); overflow != 0 || r.IsZero() {
		return r, s, makeError(ErrInvalidSignature,
			"signature r is not in [1, N-1]")
	}
	if overflow := s.SetBytes(&sig.S); overflow != 0 || s.IsZero() {
		return r, s, makeError(ErrInvalidSignature,
			"signature s is not in [1, N-1]")
	}
	return r, s, nil
}

// IsCanonical reports whether S lies in the lower half of the group order.
func (sig Signature) IsCanonical() bool {
	_, s, err := sig.scalars()
	return err == nil && !s.IsOverHalfOrder()
}

// Canonicalize returns the low-S form of sig.  When S is negated the parity
// flips and V moves to the other marker of the same scheme.
func (sig Signature) Canonicalize() (Signature, error) {
	_, s, err := sig.scalars()
	if err != nil {
		return Signature{}, err
	}
	parity, err := sig.Parity()
	if err != nil {
		return Signature{}, err
	}
	if !s.IsOverHalfOrder() {
		return sig, nil
	}

	s.Negate()
	out := Signature{R: sig.R, S: s.Bytes(), V: sig.V - uint64(parity)}
	out.V += uint64(parity ^ 1)
	return out, nil
}

// LegacyBytes returns the 65-byte V ‖ r ‖ s buffer behind the legacy form.
// Hive transactions carry this buffer hex encoded.  The marker must fit in a
// byte.
func (sig Signature) LegacyBytes() ([]byte, error) {
	if sig.V > 0xff {
		str := fmt.Sprintf("recovery marker %d does not fit the legacy "+
			"encoding", sig.V)
		return nil, makeError(ErrInvalidRecoveryMarker, str)
	}

	buf := make([]byte, 0, base58check.SignatureLen)
	buf = append(buf, byte(sig.V))
	buf = append(buf, sig.R[:]...)
	buf = append(buf, sig.S[:]...)
	return buf, nil
}

// SignatureFromLegacyBytes reverses LegacyBytes.  V is kept as stored.
func SignatureFromLegacyBytes(buf []byte) (Signature, error) {
	if len(buf) != base58check.SignatureLen {
		str := fmt.Sprintf("legacy signature is %d bytes, expected %d",
			len(buf), base58check.SignatureLen)
		return Signature{}, base58check.Error{Err: ErrInvalidLength, Description: str}
	}

	sig := Signature{V: uint64(buf[0])}
	copy(sig.R[:], buf[1:33])
	copy(sig.S[:], buf[33:65])
	if _, err := sig.Parity(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// Legacy renders the signature as prefix ‖ base58check(V ‖ r ‖ s, K1).
func (sig Signature) Legacy(prefix string) (string, error) {
	buf, err := sig.LegacyBytes()
	if err != nil {
		return "", err
	}
	encoded, err := base58check.Encode(buf, base58check.K1)
	if err != nil {
		return "", err
	}
	return prefix + encoded, nil
}

// ParseLegacySignature reverses Legacy.  The text must start with prefix,
// DefaultSignaturePrefix when empty.  Unprefixed K1 text is the wire layout,
// which shares the checksum, so it is rejected here rather than misread.
func ParseLegacySignature(text, prefix string) (Signature, error) {
	if prefix == "" {
		prefix = DefaultSignaturePrefix
	}
	body, ok := strings.CutPrefix(text, prefix)
	if !ok {
		str := fmt.Sprintf("legacy signature does not start with %q", prefix)
		return Signature{}, makeError(ErrInvalidSignature, str)
	}

	buf, err := base58check.Decode(body, base58check.K1)
	if err != nil {
		return Signature{}, err
	}
	return SignatureFromLegacyBytes(buf)
}

// String returns the legacy form with DefaultSignaturePrefix, or a
// placeholder when V does not fit in a byte.
func (sig Signature) String() string {
	s, err := sig.Legacy(DefaultSignaturePrefix)
	if err != nil {
		return fmt.Sprintf("Signature(r=%x, s=%x, v=%d)", sig.R, sig.S, sig.V)
	}
	return s
}
