package batchverify

import (
	"context"
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
	"golang.org/x/sync/errgroup"
)

// Config controls how a Verifier checks records.
type Config struct {
	// Workers bounds concurrent verifications.  Zero means GOMAXPROCS.
	Workers int

	// Digest hashes messages before recovery.  Nil means SHA-256.
	Digest hivekeys.Digest

	// Chain selects the address prefix of the signer column.
	Chain hivekeys.Chain

	// SignaturePrefix marks legacy signatures.  Empty means SIG_K1_.
	SignaturePrefix string
}

// DefaultConfig returns the configuration NewVerifier starts from.
func DefaultConfig() Config {
	return Config{
		Workers:         runtime.GOMAXPROCS(0),
		Digest:          hivekeys.SHA256,
		Chain:           hivekeys.ChainHive,
		SignaturePrefix: hivekeys.DefaultSignaturePrefix,
	}
}

// Result is the outcome of verifying one record.
type Result struct {
	Index  int
	Record Record

	// Recovered is the signer recovered from the signature, or the zero key
	// when the signature could not be parsed or recovered.
	Recovered hivekeys.PublicKey

	Verified bool
	Err      error
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total    int
	Verified int
	Failed   int
}

// Summarize counts verified and failed results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Verified {
			s.Verified++
		} else {
			s.Failed++
		}
	}
	return s
}

// Verifier checks records concurrently.
type Verifier struct {
	parser   RecordParser
	config   Config
	validate *validator.Validate
}

// NewVerifier creates a verifier with a JSON parser and DefaultConfig.
func NewVerifier() *Verifier {
	return &Verifier{
		parser:   &JSONParser{},
		config:   DefaultConfig(),
		validate: validator.New(),
	}
}

// WithParser sets the parser used by VerifyFile.
func (v *Verifier) WithParser(parser RecordParser) *Verifier {
	v.parser = parser
	return v
}

// WithConfig replaces the configuration.
func (v *Verifier) WithConfig(config Config) *Verifier {
	v.config = config
	return v
}

// Config returns the configuration in use.
func (v *Verifier) Config() Config {
	return v.config
}

// VerifyFile parses source with the configured parser and verifies every
// record.
func (v *Verifier) VerifyFile(ctx context.Context, source string) ([]Result, error) {
	records, err := v.parser.ParseRecords(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	log.Debugf("Parsed %d records from %s", len(records), source)
	return v.VerifyRecords(ctx, records)
}

// VerifyRecords verifies records concurrently and returns one Result per
// record in input order.  The only error returned is the context's.
func (v *Verifier) VerifyRecords(ctx context.Context, records []Record) ([]Result, error) {
	workers := v.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log.Debugf("Verifying %d records with %d workers", len(records), workers)

	results := make([]Result, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range records {
		i := i
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.verify(i, records[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := Summarize(results)
	log.Infof("Verified %d of %d records", summary.Verified, summary.Total)
	return results, nil
}

// verify checks a single record.
func (v *Verifier) verify(i int, rec Record) Result {
	res := Result{Index: i, Record: rec}

	if err := v.validate.Struct(rec); err != nil {
		res.Err = fmt.Errorf("invalid record: %w", err)
		return res
	}

	expected, err := hivekeys.ParseAddress(strings.TrimSpace(rec.Signer), v.config.Chain)
	if err != nil {
		res.Err = fmt.Errorf("failed to parse signer: %w", err)
		return res
	}

	sig, err := ParseSignature(rec.Signature, v.config.SignaturePrefix)
	if err != nil {
		res.Err = fmt.Errorf("failed to parse signature: %w", err)
		return res
	}

	digest := v.config.Digest
	if digest == nil {
		digest = hivekeys.SHA256
	}
	recovered, err := sig.RecoverWith([]byte(rec.Message), digest)
	if err != nil {
		res.Err = &hivekeys.VerificationError{Expected: expected, Cause: err}
		return res
	}
	res.Recovered = recovered

	if !recovered.Equal(expected) {
		res.Err = &hivekeys.VerificationError{Expected: expected, Actual: recovered}
		log.Debugf("Record %d: signer mismatch", i)
		return res
	}
	res.Verified = true
	return res
}

// ParseSignature accepts a signature in any of the textual forms records
// carry: the legacy form starting with prefix (SIG_K1_ when empty), the 130
// character hex V ‖ r ‖ s buffer, or the base58 wire form.
func ParseSignature(text, prefix string) (hivekeys.Signature, error) {
	if prefix == "" {
		prefix = hivekeys.DefaultSignaturePrefix
	}
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, prefix):
		return hivekeys.ParseLegacySignature(text, prefix)

	case len(text) == 2*65 && isHex(text):
		buf, err := hex.DecodeString(text)
		if err != nil {
			return hivekeys.Signature{}, err
		}
		return hivekeys.SignatureFromLegacyBytes(buf)
	}

	w, err := hivekeys.ParseWireSignature(text)
	if err != nil {
		return hivekeys.Signature{}, err
	}
	return w.Signature(), nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
