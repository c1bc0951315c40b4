/*
Package hivekeys implements the key and signature primitives of the Hive,
Steem and EOS family of secp256k1 chains.

# Keys

A PrivateKey is derived deterministically from an account name, its master
password and a role:

	key, err := hivekeys.FromCredentials("alice", password, hivekeys.RoleActive)

It travels as a WIF string (see the base58check package for the framing) and
never appears in formatted output or log lines.  Its PublicKey is displayed
with a chain prefix:

	addr, err := key.Public().Address(hivekeys.ChainHive) // STM...

# Signatures

Sign produces deterministic (RFC 6979) low-S recoverable signatures.  The
recovery marker V is stored in one of several numbering schemes, all of which
NormalizeRecoveryMarker maps back to a parity:

	0, 1     raw parity
	27, 28   Electrum
	31, 32   compact, compressed key
	35+      replay-protected, 35 + 2*chainID

A Signature has two textual forms.  The legacy form rotates V to the front,
prefix ‖ base58check(V ‖ r ‖ s), and is what Hive APIs exchange.  The wire
form keeps the r ‖ s ‖ parity layout of WireSignature.

Recovery either returns the signer's PublicKey or fails.  Verify compares the
recovered key with an expected one and reports every failure as a
*VerificationError, so callers see a verification mismatch rather than a
recovery error.

# Errors

Errors carry an ErrorKind and are matched with errors.Is:

	if errors.Is(err, hivekeys.ErrChecksumMismatch) {
		// mistyped WIF or address
	}
*/
package hivekeys
