package hivekeys

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// compactMagicOffset is the header a compact signature for a compressed key
// starts from.
const compactMagicOffset = 27 + 4

// SignOptions selects how a message is hashed and how the recovery parity is
// stored in V.
type SignOptions struct {
	Digest Digest
	Scheme RecoveryScheme
}

// DefaultSignOptions returns the options Sign uses: a SHA-256 digest and
// Electrum markers.
func DefaultSignOptions() SignOptions {
	return SignOptions{
		Digest: SHA256,
		Scheme: SchemeElectrum,
	}
}

// Sign signs the SHA-256 digest of message with an RFC 6979 nonce.  The result
// is low-S and carries V = parity + 27.
func Sign(key PrivateKey, message []byte) (Signature, error) {
	return SignWith(key, message, DefaultSignOptions())
}

// SignWith is Sign with an explicit digest and recovery scheme.  A nil Digest
// means SHA256.
func SignWith(key PrivateKey, message []byte, opts SignOptions) (Signature, error) {
	digest := opts.Digest
	if digest == nil {
		digest = SHA256
	}
	return SignDigest(key, digest(message), opts.Scheme)
}

// SignDigest signs a precomputed 32-byte hash.
func SignDigest(key PrivateKey, hash [32]byte, scheme RecoveryScheme) (Signature, error) {
	if key.IsZero() {
		return Signature{}, makeError(ErrInvalidScalar, "cannot sign with the zero key")
	}

	priv := key.curveKey()
	defer priv.Zero()

	compact := ecdsa.SignCompact(priv, hash[:], true)
	code := compact[0] - compactMagicOffset
	if code > 1 {
		// Only reachable when the nonce point's x coordinate exceeds N.
		str := fmt.Sprintf("signature recovery code %d cannot be expressed "+
			"as a parity", code)
		return Signature{}, makeError(ErrInvalidSignature, str)
	}

	var sig Signature
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:65])
	sig.V = scheme.marker(code)

	log.Tracef("Signed digest %x with recovery marker %d", hash, sig.V)
	return sig, nil
}

// Recover returns the public key that produced sig over the SHA-256 digest of
// message.
func (sig Signature) Recover(message []byte) (PublicKey, error) {
	return sig.RecoverDigest(SHA256(message))
}

// RecoverWith is Recover with an explicit digest.
func (sig Signature) RecoverWith(message []byte, digest Digest) (PublicKey, error) {
	if digest == nil {
		digest = SHA256
	}
	return sig.RecoverDigest(digest(message))
}

// RecoverDigest returns the public key that produced sig over hash.
func (sig Signature) RecoverDigest(hash [32]byte) (PublicKey, error) {
	if _, _, err := sig.scalars(); err != nil {
		return PublicKey{}, err
	}
	parity, err := sig.Parity()
	if err != nil {
		return PublicKey{}, err
	}

	compact := make([]byte, 0, 65)
	compact = append(compact, compactMagicOffset+parity)
	compact = append(compact, sig.R[:]...)
	compact = append(compact, sig.S[:]...)

	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		str := fmt.Sprintf("no public key recovers from the signature: %v", err)
		return PublicKey{}, makeError(ErrRecovery, str)
	}
	return publicKeyFromSecp256k1(pub), nil
}

// Verify recovers the signer of message and compares it with expected.  Any
// failure, including one to recover a key at all, is reported as a
// *VerificationError.
func (sig Signature) Verify(message []byte, expected PublicKey) error {
	return sig.VerifyDigest(SHA256(message), expected)
}

// VerifyWith is Verify with an explicit digest.
func (sig Signature) VerifyWith(message []byte, expected PublicKey, digest Digest) error {
	if digest == nil {
		digest = SHA256
	}
	return sig.VerifyDigest(digest(message), expected)
}

// VerifyDigest is Verify over a precomputed hash.
func (sig Signature) VerifyDigest(hash [32]byte, expected PublicKey) error {
	actual, err := sig.RecoverDigest(hash)
	if err != nil {
		return &VerificationError{Expected: expected, Cause: err}
	}
	if !actual.Equal(expected) {
		return &VerificationError{Expected: expected, Actual: actual}
	}
	return nil
}

// IsVerificationError reports whether err carries a *VerificationError.
func IsVerificationError(err error) bool {
	var verr *VerificationError
	return errors.As(err, &verr)
}
