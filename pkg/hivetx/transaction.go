// Package hivetx provides a minimal Hive transaction envelope that can be
// digested, signed and checked for its signers.
//
// The envelope is not a full transaction schema.  Operations carry their
// payload as raw JSON and the digest covers the JSON rendering of the envelope
// with the signatures left out.  Nodes digest the binary serialization
// prefixed with the chain id instead, so envelopes signed here verify
// locally but are not accepted for broadcast.
package hivetx

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
)

// ExpirationLayout is the timestamp layout Hive nodes use for expirations.
const ExpirationLayout = "2006-01-02T15:04:05"

// Operation is a single named operation.  It marshals as the two element
// array ["name", {payload}].
type Operation struct {
	Name    string
	Payload json.RawMessage
}

// NewOperation marshals payload and wraps it in an Operation.
func NewOperation(name string, payload interface{}) (Operation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Operation{}, fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}
	return Operation{Name: name, Payload: raw}, nil
}

// MarshalJSON implements json.Marshaler.
func (op Operation) MarshalJSON() ([]byte, error) {
	payload := op.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	return json.Marshal([2]interface{}{op.Name, payload})
}

// UnmarshalJSON implements json.Unmarshaler.
func (op *Operation) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to parse operation: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("operation has %d elements, expected 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &op.Name); err != nil {
		return fmt.Errorf("failed to parse operation name: %w", err)
	}
	op.Payload = append(json.RawMessage(nil), pair[1]...)
	return nil
}

// Transaction is a Hive transaction envelope with its signatures.
type Transaction struct {
	RefBlockNum    uint16      `json:"ref_block_num"`
	RefBlockPrefix uint32      `json:"ref_block_prefix"`
	Expiration     string      `json:"expiration"`
	Operations     []Operation `json:"operations"`
	Extensions     []string    `json:"extensions"`
	Signatures     []string    `json:"signatures,omitempty"`
}

// SetExpiration stores t in UTC using ExpirationLayout.
func (tx *Transaction) SetExpiration(t time.Time) {
	tx.Expiration = t.UTC().Format(ExpirationLayout)
}

// unsigned returns a copy of tx without signatures and with empty instead of
// nil lists, so both render as [] in JSON.
func (tx *Transaction) unsigned() Transaction {
	out := *tx
	out.Signatures = nil
	if out.Operations == nil {
		out.Operations = []Operation{}
	}
	if out.Extensions == nil {
		out.Extensions = []string{}
	}
	return out
}

// SigningBytes returns the JSON rendering the digest is computed over.
func (tx *Transaction) SigningBytes() ([]byte, error) {
	b, err := json.Marshal(tx.unsigned())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return b, nil
}

// Digest hashes SigningBytes with d.  A nil d means SHA-256.
func (tx *Transaction) Digest(d hivekeys.Digest) ([32]byte, error) {
	if d == nil {
		d = hivekeys.SHA256
	}
	b, err := tx.SigningBytes()
	if err != nil {
		return [32]byte{}, err
	}
	return d(b), nil
}

// Sign signs the SHA-256 digest of the JSON envelope with the compact recovery
// scheme and appends the hex encoded V ‖ r ‖ s buffer to Signatures.  The
// digest omits the chain id, so the result is checkable with Signers but is
// not a signature Hive nodes will accept.
func (tx *Transaction) Sign(key hivekeys.PrivateKey) error {
	digest, err := tx.Digest(hivekeys.SHA256)
	if err != nil {
		return err
	}

	sig, err := hivekeys.SignDigest(key, digest, hivekeys.SchemeCompact)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	buf, err := sig.LegacyBytes()
	if err != nil {
		return err
	}

	tx.Signatures = append(tx.Signatures, hex.EncodeToString(buf))
	return nil
}

// ErrUnsigned is returned by Signers for a transaction without signatures.
var ErrUnsigned = errors.New("transaction is not signed")

// Signers recovers the public key behind every signature, in order.
func (tx *Transaction) Signers() ([]hivekeys.PublicKey, error) {
	if len(tx.Signatures) == 0 {
		return nil, ErrUnsigned
	}

	digest, err := tx.Digest(hivekeys.SHA256)
	if err != nil {
		return nil, err
	}

	signers := make([]hivekeys.PublicKey, 0, len(tx.Signatures))
	for i, text := range tx.Signatures {
		buf, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signature %d: %w", i, err)
		}
		sig, err := hivekeys.SignatureFromLegacyBytes(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse signature %d: %w", i, err)
		}
		pub, err := sig.RecoverDigest(digest)
		if err != nil {
			return nil, fmt.Errorf("failed to recover signer %d: %w", i, err)
		}
		signers = append(signers, pub)
	}
	return signers, nil
}

// IsSignedBy reports whether any signature recovers to pub.
func (tx *Transaction) IsSignedBy(pub hivekeys.PublicKey) (bool, error) {
	signers, err := tx.Signers()
	if err != nil {
		return false, err
	}
	for _, signer := range signers {
		if signer.Equal(pub) {
			return true, nil
		}
	}
	return false, nil
}
