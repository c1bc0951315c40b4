package hivekeys

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mahdiidarabi/hivekeys/pkg/base58check"
)

const (
	// PrivateKeyLen is the length of a serialized private scalar.
	PrivateKeyLen = 32

	// PublicKeyLen is the length of a compressed public key.
	PublicKeyLen = 33
)

// Roles under which Hive derives an account's keys from its master password.
const (
	RoleOwner   = "owner"
	RoleActive  = "active"
	RolePosting = "posting"
	RoleMemo    = "memo"
)

// PrivateKey is a secp256k1 scalar in [1, N-1].  Its String and GoString
// methods redact the key so it cannot leak through fmt or loggers.
type PrivateKey struct {
	key [PrivateKeyLen]byte
}

// PublicKey is a compressed secp256k1 point.
type PublicKey struct {
	key [PublicKeyLen]byte
}

// checkScalar rejects zero and values not below the curve order.
func checkScalar(b []byte) error {
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		return makeError(ErrInvalidScalar,
			"private key is not below the secp256k1 group order")
	}
	if s.IsZero() {
		return makeError(ErrInvalidScalar, "private key is zero")
	}
	return nil
}

// NewPrivateKey validates b as a 32-byte big-endian scalar.
func NewPrivateKey(b []byte) (PrivateKey, error) {
	if len(b) != PrivateKeyLen {
		str := fmt.Sprintf("private key is %d bytes, expected %d", len(b),
			PrivateKeyLen)
		return PrivateKey{}, base58check.Error{Err: ErrInvalidLength, Description: str}
	}
	if err := checkScalar(b); err != nil {
		return PrivateKey{}, err
	}

	var k PrivateKey
	copy(k.key[:], b)
	return k, nil
}

// checkASCII reports which credential field, if any, holds non-ASCII bytes.
// The value itself is left out of the error because it may be a password.
func checkASCII(field, value string) error {
	for i := 0; i < len(value); i++ {
		if value[i] >= 0x80 {
			str := fmt.Sprintf("%s contains a non-ASCII byte at offset %d",
				field, i)
			return makeError(ErrNonASCIIInput, str)
		}
	}
	return nil
}

// FromCredentials derives the key Hive wallets compute from an account name,
// its master password and a role:
//
//	SHA256(username ‖ role ‖ password)
//
// The role sits between username and password.  Identical inputs always yield
// the identical key.
func FromCredentials(username, password, role string) (PrivateKey, error) {
	if err := checkASCII("username", username); err != nil {
		return PrivateKey{}, err
	}
	if err := checkASCII("password", password); err != nil {
		return PrivateKey{}, err
	}
	if err := checkASCII("role", role); err != nil {
		return PrivateKey{}, err
	}

	seed := make([]byte, 0, len(username)+len(role)+len(password))
	seed = append(seed, username...)
	seed = append(seed, role...)
	seed = append(seed, password...)
	sum := sha256.Sum256(seed)

	log.Tracef("Derived %s key for account %q", role, username)
	return NewPrivateKey(sum[:])
}

// FromWIF decodes a Sha256x2 wallet import format string.
func FromWIF(wif string) (PrivateKey, error) {
	b, err := base58check.Decode(wif, base58check.Sha256x2)
	if err != nil {
		return PrivateKey{}, err
	}
	return NewPrivateKey(b)
}

// WIF encodes the key in wallet import format.
func (k PrivateKey) WIF() string {
	// The payload length is fixed, so encoding cannot fail.
	wif, _ := base58check.Encode(k.key[:], base58check.Sha256x2)
	return wif
}

// Bytes returns a copy of the 32-byte big-endian scalar.
func (k PrivateKey) Bytes() []byte {
	b := make([]byte, PrivateKeyLen)
	copy(b, k.key[:])
	return b
}

// IsZero reports whether k is the unusable zero value.
func (k PrivateKey) IsZero() bool {
	return k.key == [PrivateKeyLen]byte{}
}

// Equal reports whether both keys hold the same scalar.
func (k PrivateKey) Equal(other PrivateKey) bool {
	return k.key == other.key
}

// String implements fmt.Stringer without revealing the key.
func (k PrivateKey) String() string {
	return "PrivateKey(redacted)"
}

// GoString implements fmt.GoStringer without revealing the key.
func (k PrivateKey) GoString() string {
	return "hivekeys.PrivateKey{redacted}"
}

// curveKey returns the curve representation of k.
func (k PrivateKey) curveKey() *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(k.key[:])
}

// Public multiplies the scalar with the curve generator.  The zero key yields
// the zero PublicKey.
func (k PrivateKey) Public() PublicKey {
	if k.IsZero() {
		return PublicKey{}
	}

	priv := k.curveKey()
	defer priv.Zero()

	var pub PublicKey
	copy(pub.key[:], priv.PubKey().SerializeCompressed())
	return pub
}

// ParsePublicKey validates b as a 33-byte compressed point.
func ParsePublicKey(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyLen {
		str := fmt.Sprintf("public key is %d bytes, expected %d", len(b),
			PublicKeyLen)
		return PublicKey{}, base58check.Error{Err: ErrInvalidLength, Description: str}
	}
	if _, err := secp256k1.ParsePubKey(b); err != nil {
		str := fmt.Sprintf("public key %x is not on the curve: %v", b, err)
		return PublicKey{}, makeError(ErrInvalidPublicKey, str)
	}

	var pub PublicKey
	copy(pub.key[:], b)
	return pub, nil
}

// publicKeyFromSecp256k1 converts a curve point into a PublicKey.
func publicKeyFromSecp256k1(p *secp256k1.PublicKey) PublicKey {
	var pub PublicKey
	copy(pub.key[:], p.SerializeCompressed())
	return pub
}

// Bytes returns a copy of the compressed encoding.
func (p PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeyLen)
	copy(b, p.key[:])
	return b
}

// IsZero reports whether p is the zero value.
func (p PublicKey) IsZero() bool {
	return p.key == [PublicKeyLen]byte{}
}

// Equal reports whether both keys encode the same point.
func (p PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(p.key[:], other.key[:])
}

// String returns the hex encoding of the compressed point.
func (p PublicKey) String() string {
	return hex.EncodeToString(p.key[:])
}
