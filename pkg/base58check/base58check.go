// Package base58check implements the base58-with-checksum encodings used by the
// Hive, Steem and EOS family of chains.
//
// Three variants exist and they differ in checksum algorithm and framing:
//
//	K1        base58(payload ‖ RIPEMD160(payload ‖ "K1")[:4])            65-byte signatures
//	Sha256x2  base58(0x80 ‖ payload ‖ SHA256(SHA256(0x80 ‖ payload))[:4]) 32-byte private keys (WIF)
//	PubKey    base58(payload ‖ RIPEMD160(payload)[:4])                   32 or 33-byte public key material
//
// Decode is the exact inverse of Encode for every well-formed payload.
package base58check

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/decred/base58"
	"github.com/decred/dcrd/crypto/ripemd160"
)

// Variant selects the checksum algorithm and payload framing.
type Variant int

const (
	// K1 frames raw 65-byte signature buffers.
	K1 Variant = iota

	// Sha256x2 frames 32-byte private keys behind the 0x80 network byte.
	Sha256x2

	// PubKey frames public key material.
	PubKey
)

const (
	// ChecksumLen is the number of checksum bytes appended to every payload.
	ChecksumLen = 4

	// NetworkByte is the single prefix byte of the Sha256x2 variant.
	NetworkByte = 0x80

	// SignatureLen is the K1 payload length.
	SignatureLen = 65

	// PrivateKeyLen is the Sha256x2 payload length, network byte excluded.
	PrivateKeyLen = 32

	// PubKeyXOnlyLen and PubKeyCompressedLen are the accepted PubKey payload
	// lengths.
	PubKeyXOnlyLen      = 32
	PubKeyCompressedLen = 33
)

// k1Suffix is hashed after the payload when computing a K1 checksum.
var k1Suffix = []byte("K1")

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case K1:
		return "K1"
	case Sha256x2:
		return "Sha256x2"
	case PubKey:
		return "PubKey"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// checkPayloadLen enforces the fixed payload lengths of each variant.
func checkPayloadLen(payload []byte, v Variant) error {
	n := len(payload)
	switch v {
	case K1:
		if n == SignatureLen {
			return nil
		}
		str := fmt.Sprintf("K1 payload is %d bytes, expected %d", n, SignatureLen)
		return makeError(ErrInvalidLength, str)
	case Sha256x2:
		if n == PrivateKeyLen {
			return nil
		}
		str := fmt.Sprintf("Sha256x2 payload is %d bytes, expected %d", n,
			PrivateKeyLen)
		return makeError(ErrInvalidLength, str)
	case PubKey:
		if n == PubKeyXOnlyLen || n == PubKeyCompressedLen {
			return nil
		}
		str := fmt.Sprintf("PubKey payload is %d bytes, expected %d or %d", n,
			PubKeyXOnlyLen, PubKeyCompressedLen)
		return makeError(ErrInvalidLength, str)
	}
	return makeError(ErrUnknownVariant, fmt.Sprintf("unknown variant %d", int(v)))
}

// checksum computes the variant checksum over data.  For Sha256x2 data must
// already include the network byte.
func checksum(data []byte, v Variant) []byte {
	switch v {
	case Sha256x2:
		first := sha256.Sum256(data)
		second := sha256.Sum256(first[:])
		return second[:ChecksumLen]
	case K1:
		h := ripemd160.New()
		h.Write(data)
		h.Write(k1Suffix)
		return h.Sum(nil)[:ChecksumLen]
	default:
		h := ripemd160.New()
		h.Write(data)
		return h.Sum(nil)[:ChecksumLen]
	}
}

// Encode frames payload according to the variant and returns its base58
// string.  The payload must have the variant's fixed length.
func Encode(payload []byte, v Variant) (string, error) {
	if err := checkPayloadLen(payload, v); err != nil {
		return "", err
	}

	buf := make([]byte, 0, 1+len(payload)+ChecksumLen)
	if v == Sha256x2 {
		buf = append(buf, NetworkByte)
	}
	buf = append(buf, payload...)
	buf = append(buf, checksum(buf, v)...)
	return base58.Encode(buf), nil
}

// Decode reverses Encode.  Lengths are checked before the checksum, and the
// Sha256x2 network byte is checked last.
func Decode(text string, v Variant) ([]byte, error) {
	switch v {
	case K1, Sha256x2, PubKey:
	default:
		return nil, makeError(ErrUnknownVariant,
			fmt.Sprintf("unknown variant %d", int(v)))
	}

	decoded := base58.Decode(text)
	if len(decoded) == 0 && len(text) != 0 {
		str := fmt.Sprintf("%s text contains characters outside the base58 "+
			"alphabet", v)
		return nil, makeError(ErrInvalidEncoding, str)
	}
	if len(decoded) < ChecksumLen {
		str := fmt.Sprintf("%s text decodes to %d bytes, too short for a "+
			"checksum", v, len(decoded))
		return nil, makeError(ErrInvalidLength, str)
	}

	body := decoded[:len(decoded)-ChecksumLen]
	sum := decoded[len(decoded)-ChecksumLen:]

	payload := body
	if v == Sha256x2 {
		if len(body) == 0 {
			return nil, makeError(ErrInvalidLength,
				"Sha256x2 text is missing its network byte")
		}
		payload = body[1:]
	}
	if err := checkPayloadLen(payload, v); err != nil {
		return nil, err
	}

	if want := checksum(body, v); !bytes.Equal(want, sum) {
		str := fmt.Sprintf("%s checksum mismatch: got %x, want %x", v, sum, want)
		return nil, makeError(ErrChecksumMismatch, str)
	}

	if v == Sha256x2 && body[0] != NetworkByte {
		str := fmt.Sprintf("network byte is %#02x, expected %#02x", body[0],
			NetworkByte)
		return nil, makeError(ErrInvalidNetworkByte, str)
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}
