package hivekeys

import (
	"crypto/sha256"

	"golang.org/x/crypto/sha3"
)

// Digest reduces a message to the 32-byte hash that is signed.
type Digest func(message []byte) [32]byte

// SHA256 is the digest Hive nodes and wallets sign.
var SHA256 Digest = sha256.Sum256

// Keccak256 is the pre-standard Keccak-256 hash.  Some signers on the EOS side
// of the family hash with it before signing raw buffers.
var Keccak256 Digest = func(message []byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write(message)
	h.Sum(out[:0])
	return out
}
