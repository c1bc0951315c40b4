package hivekeys

import (
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHelloWire   = "28Xrw5WR4Cz1by9kfvjxLCwFvGNatnx99WJmD2wi3zx8QqayWzXZYJQrW3zJzU8f1eJSzWSYDoZHh75txvSmBUQiRN8z3G5"
	testHelloR      = "717c3ee5950f1d1b931732e70778568c3c5720ec9e87229d6298dbdf84af5549"
	testHelloS      = "701d26337d4ef890c4258c35990c463349c37d4d2d8be119736c84e17b4d4216"
	testHelloHighS  = "8fe2d9cc82b1076f3bda73ca66f3b9cb70eb5f9981bcbf224c65d9ab54e8ff2b"
	testHelloLegacy = "SIG_K1_Gr8k8FxgGLDhaMuobE1ZZa3mgLGBCQGT4HA6JMHnMnZwNMzjB3phVUaBF9MftcrdyrCgYKYPYDbm7ENkJnHZMJ2b8ew1CN"
)

func testSignature(t *testing.T, r, s string, v uint64) Signature {
	t.Helper()
	sig := Signature{V: v}
	copy(sig.R[:], mustHex(t, r))
	copy(sig.S[:], mustHex(t, s))
	return sig
}

func TestSignVectors(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		role      string
		message   string
		digest    Digest
		r, s      string
		parity    byte
		wire      string
		electrum  string
		compact   string
	}{
		{
			name:     "helloworld keccak",
			username: "test", password: "test", role: RoleOwner,
			message:  "helloworld",
			digest:   Keccak256,
			r:        testHelloR,
			s:        testHelloS,
			parity:   0,
			wire:     testHelloWire,
			electrum: testHelloLegacy,
			compact:  "SIG_K1_KA6ufwcpRszyqYPUKis9woshbNoSQW8dZLz2yyXXHz629tgEAKhP37AheMJWkSZETakueb4ZgeCqjs4TVourRRfxMbHsfS",
		},
		{
			name:     "helloworld sha256",
			username: "test", password: "test", role: RoleOwner,
			message:  "helloworld",
			digest:   SHA256,
			r:        "09d3a3db83f0b26d609927fac7225b4b687a01987ff01bfe0ed5c298a671f198",
			s:        "6513af26a070e61eafc638a92354566f660b5a24f6f27ddbc8469b0ea03ffdd5",
			parity:   0,
			wire:     "6g7okWXBwcKhWw99zUAN6o8g1QQ5qg4sJH3t3tycmSonRiST3kVvqfSrVXggLmjPXivLmg5EvvqJFR77iY65nBAE7KXRFA",
			electrum: "SIG_K1_GcaBFD1sd7g3zGsrRGffuwK9bk4MSETm7rgWvNs9ZHgSE7XRG3eVLzJuTw23a1f6oQF49GedN3wbW9U1J4AcGqEvYWKmPL",
			compact:  "SIG_K1_JvYLntg1nfTLFTMX9mXGJB95WnbceLKwcvWTc16tVVCX1eCvFKXAtcuRs8xtRqMhH8oHFYAoWUYg8n9iV5nuLxtHojE2eo",
		},
		{
			name:     "transfer keccak",
			username: "alice", password: "hunter2", role: RoleActive,
			message:  "transfer 1.000 HIVE",
			digest:   Keccak256,
			r:        "1b4283def483cb1af9c370993ca036fad340415c188bc20d07224bd1ff750ed6",
			s:        "6078bd879114ea14086e0e912dc0b880110ede453e1fb5e4871b89fe7b5ef36d",
			parity:   1,
			wire:     "GjzLCxbN2tXUsQwxu3kfHaE9ZP7GCwBmU51qEEkcHXaAtuGNGQsKMQDDGcUgdpByKjTUeru5JgHRPGuX8spownqgQScYPm",
			electrum: "SIG_K1_HEM14etfCniosxJrKLPRvKyfGjL2rBgZSwfokcXsnGxHYQ5EN2nFz1hJZ1A3YwWKdXFyyUxKvbs6nMn3XZCNafjgF5YLtT",
		},
		{
			name:     "transfer sha256",
			username: "alice", password: "hunter2", role: RoleActive,
			message:  "transfer 1.000 HIVE",
			digest:   SHA256,
			r:        "59999d1d33ffca1d2062e694149d07fd0fdd7f24bb0cf00bd2b6f40ab0ac29e2",
			s:        "0875e6f8606c26ad9e7d7eb52c90ea23e1c0e67f883de39216b0ca0ba7414c9b",
			parity:   1,
			wire:     "tjtnsup2cvi7m5wHsJ584Ka7NewuU3XZchN9qbcNmBUiVwffT4vkgHKjucepp5fm9L5XbK1JfqMP9WjiWzD2S4VoW4Xpqq",
			electrum: "SIG_K1_HNW3S6wCcwLeWQWrcmpRa7Tc6GRtPHNWga4YRGT5xogrk6BfaXvt77LFxFtE1G9MrAn2hqSu4AJGHkwXDHpFqH9AK64emX",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key, err := FromCredentials(test.username, test.password, test.role)
			require.NoError(t, err)
			msg := []byte(test.message)

			sig, err := SignWith(key, msg, SignOptions{Digest: test.digest,
				Scheme: SchemeElectrum})
			require.NoError(t, err)

			assert.Equal(t, mustHex(t, test.r), sig.R[:])
			assert.Equal(t, mustHex(t, test.s), sig.S[:])
			assert.Equal(t, uint64(test.parity)+27, sig.V)
			assert.True(t, sig.IsCanonical())

			legacy, err := sig.Legacy(DefaultSignaturePrefix)
			require.NoError(t, err)
			assert.Equal(t, test.electrum, legacy)

			wire, err := sig.Wire()
			require.NoError(t, err)
			assert.Equal(t, test.wire, wire.String())
			assert.Equal(t, test.parity, wire[64])

			if test.compact != "" {
				compact, err := SignWith(key, msg, SignOptions{
					Digest: test.digest, Scheme: SchemeCompact})
				require.NoError(t, err)
				legacy, err := compact.Legacy(DefaultSignaturePrefix)
				require.NoError(t, err)
				assert.Equal(t, test.compact, legacy)
			}

			pub, err := sig.RecoverWith(msg, test.digest)
			require.NoError(t, err)
			assert.True(t, pub.Equal(key.Public()))
			assert.NoError(t, sig.VerifyWith(msg, key.Public(), test.digest))
		})
	}
}

func TestSignDefaultsToSHA256Electrum(t *testing.T) {
	key := testOwnerKey(t)
	msg := []byte("helloworld")

	sig, err := Sign(key, msg)
	require.NoError(t, err)
	assert.Equal(t, uint64(27), sig.V)
	assert.Equal(t,
		"SIG_K1_GcaBFD1sd7g3zGsrRGffuwK9bk4MSETm7rgWvNs9ZHgSE7XRG3eVLzJuTw23a1f6oQF49GedN3wbW9U1J4AcGqEvYWKmPL",
		sig.String())

	again, err := Sign(key, msg)
	require.NoError(t, err)
	assert.Equal(t, sig, again, "signing is not deterministic")

	pub, err := sig.Recover(msg)
	require.NoError(t, err)
	addr, err := pub.Address(ChainHive)
	require.NoError(t, err)
	assert.Equal(t, testOwnerAddr, addr)
}

// TestRecoverWireVector recovers the signer from the textual wire form only.
func TestRecoverWireVector(t *testing.T) {
	wire, err := ParseWireSignature(testHelloWire)
	require.NoError(t, err)

	pub, err := wire.Signature().RecoverWith([]byte("helloworld"), Keccak256)
	require.NoError(t, err)

	addr, err := pub.Address(ChainHive)
	require.NoError(t, err)
	assert.Equal(t, testOwnerAddr, addr)
}

func TestSignRecoverRandomKeys(t *testing.T) {
	schemes := []RecoveryScheme{SchemeRaw, SchemeElectrum, SchemeCompact, 37}

	for i := 0; i < 50; i++ {
		var raw [32]byte
		_, err := rand.Read(raw[:])
		require.NoError(t, err)
		key, err := NewPrivateKey(raw[:])
		if err != nil {
			continue
		}

		msg := make([]byte, i+1)
		_, err = rand.Read(msg)
		require.NoError(t, err)

		scheme := schemes[i%len(schemes)]
		sig, err := SignWith(key, msg, SignOptions{Scheme: scheme})
		require.NoError(t, err)
		require.True(t, sig.IsCanonical())
		require.True(t, sig.V == uint64(scheme) || sig.V == uint64(scheme)+1)

		pub, err := sig.Recover(msg)
		require.NoError(t, err)
		require.True(t, pub.Equal(key.Public()), "key %d", i)

		legacy, err := sig.Legacy(DefaultSignaturePrefix)
		require.NoError(t, err)
		parsed, err := ParseLegacySignature(legacy, "")
		require.NoError(t, err)
		require.Equal(t, sig, parsed)
	}
}

func TestSignZeroKey(t *testing.T) {
	_, err := Sign(PrivateKey{}, []byte("helloworld"))
	assert.ErrorIs(t, err, ErrInvalidScalar)
}

func TestVerifyMismatch(t *testing.T) {
	owner := testOwnerKey(t)
	alice, err := FromCredentials("alice", "hunter2", RoleActive)
	require.NoError(t, err)

	msg := []byte("helloworld")
	sig, err := Sign(owner, msg)
	require.NoError(t, err)

	err = sig.Verify(msg, alice.Public())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerificationMismatch)
	assert.True(t, IsVerificationError(err))

	var verr *VerificationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Expected.Equal(alice.Public()))
	assert.True(t, verr.Actual.Equal(owner.Public()))
	assert.NoError(t, verr.Cause)

	// A different message recovers some other key.
	err = sig.Verify([]byte("hello world"), owner.Public())
	assert.ErrorIs(t, err, ErrVerificationMismatch)
}

func TestVerifyConvertsRecoveryFailures(t *testing.T) {
	pub := testOwnerKey(t).Public()
	msg := []byte("helloworld")

	tests := []struct {
		name  string
		sig   Signature
		cause error
	}{
		{
			name:  "zero r",
			sig:   testSignature(t, "00", testHelloS, 27),
			cause: ErrInvalidSignature,
		},
		{
			name:  "bad marker",
			sig:   testSignature(t, testHelloR, testHelloS, 4),
			cause: ErrInvalidRecoveryMarker,
		},
		{
			name: "r off the curve",
			sig: testSignature(t,
				"0000000000000000000000000000000000000000000000000000000000000005",
				testHelloS, 27),
			cause: ErrRecovery,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.sig.Recover(msg)
			assert.ErrorIs(t, err, test.cause)

			err = test.sig.Verify(msg, pub)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrVerificationMismatch)
			assert.False(t, errors.Is(err, test.cause))

			var verr *VerificationError
			require.True(t, errors.As(err, &verr))
			assert.True(t, verr.Actual.IsZero())
			assert.ErrorIs(t, verr.Cause, test.cause)
		})
	}
}

func TestRecoverRejectsOutOfRangeScalars(t *testing.T) {
	msg := []byte("helloworld")

	for _, sig := range []Signature{
		testSignature(t, curveOrderHex, testHelloS, 27),
		testSignature(t, testHelloR, curveOrderHex, 27),
		testSignature(t, testHelloR, "00", 27),
	} {
		_, err := sig.Recover(msg)
		assert.ErrorIs(t, err, ErrInvalidSignature)

		_, err = sig.Wire()
		assert.ErrorIs(t, err, ErrInvalidSignature)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		v     uint64
		wantV uint64
	}{
		{"raw", 1, 0},
		{"electrum", 28, 27},
		{"compact", 32, 31},
		{"chain id", 36, 35},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			high := testSignature(t, testHelloR, testHelloHighS, test.v)
			assert.False(t, high.IsCanonical())

			low, err := high.Canonicalize()
			require.NoError(t, err)
			assert.True(t, low.IsCanonical())
			assert.Equal(t, mustHex(t, testHelloS), low.S[:])
			assert.Equal(t, high.R, low.R)
			assert.Equal(t, test.wantV, low.V)

			again, err := low.Canonicalize()
			require.NoError(t, err)
			assert.Equal(t, low, again)
		})
	}

	_, err := testSignature(t, testHelloR, testHelloHighS, 29).Canonicalize()
	assert.ErrorIs(t, err, ErrInvalidRecoveryMarker)
}

func TestCanonicalizedSignatureRecoversSigner(t *testing.T) {
	high := testSignature(t, testHelloR, testHelloHighS, 28)
	low, err := high.Canonicalize()
	require.NoError(t, err)

	pub, err := low.RecoverWith([]byte("helloworld"), Keccak256)
	require.NoError(t, err)
	assert.True(t, pub.Equal(testOwnerKey(t).Public()))
}

func TestLegacy(t *testing.T) {
	sig := testSignature(t, testHelloR, testHelloS, 27)

	legacy, err := sig.Legacy(DefaultSignaturePrefix)
	require.NoError(t, err)
	assert.Equal(t, testHelloLegacy, legacy)

	parsed, err := ParseLegacySignature(legacy, "")
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)
	assert.Equal(t, legacy, sig.String())

	custom, err := sig.Legacy("SIG_")
	require.NoError(t, err)
	parsed, err = ParseLegacySignature(custom, "SIG_")
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	sig.V = 256
	_, err = sig.Legacy(DefaultSignaturePrefix)
	assert.ErrorIs(t, err, ErrInvalidRecoveryMarker)
	assert.Contains(t, sig.String(), "v=256")
}

func TestParseLegacySignatureErrors(t *testing.T) {
	_, err := ParseLegacySignature(testHelloLegacy[:len(testHelloLegacy)-1]+"M", "")
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = ParseLegacySignature("SIG_K1_"+testOwnerWIF, "")
	assert.ErrorIs(t, err, ErrInvalidLength)

	unknown, err := testSignature(t, testHelloR, testHelloS, 4).Legacy(DefaultSignaturePrefix)
	require.NoError(t, err)
	_, err = ParseLegacySignature(unknown, "")
	assert.ErrorIs(t, err, ErrInvalidRecoveryMarker)

	// Unprefixed text is never read as the legacy layout, including the wire
	// vector whose first byte would pass as a chain id marker.
	for _, text := range []string{
		testHelloLegacy[len(DefaultSignaturePrefix):],
		testHelloWire,
		"SIG_" + testHelloLegacy[len(DefaultSignaturePrefix):],
	} {
		_, err = ParseLegacySignature(text, "")
		assert.ErrorIs(t, err, ErrInvalidSignature, text)
	}
}

func TestNewSignature(t *testing.T) {
	r, ok := new(big.Int).SetString(testHelloR, 16)
	require.True(t, ok)
	s, ok := new(big.Int).SetString(testHelloS, 16)
	require.True(t, ok)

	sig, err := NewSignature(r, s, 27)
	require.NoError(t, err)
	assert.Equal(t, testSignature(t, testHelloR, testHelloS, 27), sig)
	assert.Equal(t, 0, r.Cmp(sig.RInt()))
	assert.Equal(t, 0, s.Cmp(sig.SInt()))

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = NewSignature(tooBig, s, 27)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = NewSignature(r, big.NewInt(-1), 27)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = NewSignature(nil, s, 27)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestLegacyBytes(t *testing.T) {
	sig := testSignature(t, testHelloR, testHelloS, 31)

	buf, err := sig.LegacyBytes()
	require.NoError(t, err)
	require.Len(t, buf, 65)
	assert.Equal(t, byte(31), buf[0])
	assert.Equal(t, sig.R[:], buf[1:33])
	assert.Equal(t, sig.S[:], buf[33:])

	back, err := SignatureFromLegacyBytes(buf)
	require.NoError(t, err)
	assert.Equal(t, sig, back)

	_, err = SignatureFromLegacyBytes(buf[:64])
	assert.ErrorIs(t, err, ErrInvalidLength)

	buf[0] = 29
	_, err = SignatureFromLegacyBytes(buf)
	assert.ErrorIs(t, err, ErrInvalidRecoveryMarker)
}
