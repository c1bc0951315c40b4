package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mahdiidarabi/hivekeys/pkg/batchverify"
	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
	"github.com/mahdiidarabi/hivekeys/pkg/hiverpc"
)

// allRoles lists the roles derive and account check when none is given.
var allRoles = []string{
	hivekeys.RoleOwner,
	hivekeys.RoleActive,
	hivekeys.RolePosting,
	hivekeys.RoleMemo,
}

// deriveCommand derives keys from an account name and master password.
type deriveCommand struct {
	app *app

	Account    string `short:"a" long:"account" env:"HIVE_ACCOUNT" required:"true" description:"Account name"`
	Role       string `short:"r" long:"role" description:"Role to derive; every role when empty"`
	PublicOnly bool   `long:"public-only" description:"Print addresses without private keys"`
}

func (c *deriveCommand) Execute(args []string) error {
	chain, err := c.app.cfg.chain()
	if err != nil {
		return err
	}
	roles := allRoles
	if c.Role != "" {
		roles = []string{c.Role}
	}

	password, err := c.app.secret(envPassword, "Master password for "+c.Account+": ")
	if err != nil {
		return err
	}

	hcliLog.Debugf("Deriving %d role(s) for account %s", len(roles), c.Account)
	for _, role := range roles {
		key, err := hivekeys.FromCredentials(c.Account, password, role)
		if err != nil {
			return fmt.Errorf("failed to derive %s key: %w", role, err)
		}
		addr, err := key.Public().Address(chain)
		if err != nil {
			return err
		}

		if c.PublicOnly {
			fmt.Fprintf(c.app.stdout, "%-8s %s\n", role, addr)
			continue
		}
		fmt.Fprintf(c.app.stdout, "%-8s %s %s\n", role, addr, key.WIF())
	}
	return nil
}

// pubkeyCommand prints the public key of a WIF.
type pubkeyCommand struct {
	app *app
}

func (c *pubkeyCommand) Execute(args []string) error {
	chain, err := c.app.cfg.chain()
	if err != nil {
		return err
	}
	key, err := c.app.privateKey()
	if err != nil {
		return err
	}

	pub := key.Public()
	addr, err := pub.Address(chain)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.app.stdout, "%s\n%s\n", addr, pub)
	return nil
}

// parseScheme maps a scheme name to its RecoveryScheme.
func parseScheme(name string) (hivekeys.RecoveryScheme, error) {
	switch name {
	case "raw":
		return hivekeys.SchemeRaw, nil
	case "", "electrum":
		return hivekeys.SchemeElectrum, nil
	case "compact":
		return hivekeys.SchemeCompact, nil
	}
	return 0, fmt.Errorf("unknown recovery scheme %q", name)
}

// formatSignature renders sig in the named output format.
func formatSignature(sig hivekeys.Signature, format string) (string, error) {
	switch format {
	case "", "legacy":
		return sig.Legacy(hivekeys.DefaultSignaturePrefix)
	case "wire":
		w, err := sig.Wire()
		if err != nil {
			return "", err
		}
		return w.String(), nil
	case "hex":
		buf, err := sig.LegacyBytes()
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(buf), nil
	}
	return "", fmt.Errorf("unknown signature format %q", format)
}

// signCommand signs a message.
type signCommand struct {
	app *app

	Scheme string `long:"scheme" choice:"raw" choice:"electrum" choice:"compact" default:"electrum" description:"Recovery marker numbering"`
	Format string `long:"format" choice:"legacy" choice:"wire" choice:"hex" default:"legacy" description:"Signature output format"`
	Args   struct {
		Message string `positional-arg-name:"message" required:"true"`
	} `positional-args:"yes"`
}

func (c *signCommand) Execute(args []string) error {
	digest, err := c.app.cfg.digest()
	if err != nil {
		return err
	}
	scheme, err := parseScheme(c.Scheme)
	if err != nil {
		return err
	}
	key, err := c.app.privateKey()
	if err != nil {
		return err
	}

	sig, err := hivekeys.SignWith(key, []byte(c.Args.Message), hivekeys.SignOptions{
		Digest: digest,
		Scheme: scheme,
	})
	if err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}
	out, err := formatSignature(sig, c.Format)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.app.stdout, out)
	return nil
}

// recoverCommand prints the address that produced a signature.
type recoverCommand struct {
	app *app

	Args struct {
		Signature string `positional-arg-name:"signature" required:"true"`
		Message   string `positional-arg-name:"message" required:"true"`
	} `positional-args:"yes"`
}

func (c *recoverCommand) Execute(args []string) error {
	chain, err := c.app.cfg.chain()
	if err != nil {
		return err
	}
	digest, err := c.app.cfg.digest()
	if err != nil {
		return err
	}
	sig, err := batchverify.ParseSignature(c.Args.Signature, "")
	if err != nil {
		return fmt.Errorf("failed to parse signature: %w", err)
	}

	pub, err := sig.RecoverWith([]byte(c.Args.Message), digest)
	if err != nil {
		return err
	}
	addr, err := pub.Address(chain)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.app.stdout, addr)
	return nil
}

// verifyCommand checks a signature against an expected address.
type verifyCommand struct {
	app *app

	Args struct {
		Signature string `positional-arg-name:"signature" required:"true"`
		Message   string `positional-arg-name:"message" required:"true"`
		Signer    string `positional-arg-name:"signer" required:"true"`
	} `positional-args:"yes"`
}

func (c *verifyCommand) Execute(args []string) error {
	chain, err := c.app.cfg.chain()
	if err != nil {
		return err
	}
	digest, err := c.app.cfg.digest()
	if err != nil {
		return err
	}
	expected, err := hivekeys.ParseAddress(c.Args.Signer, chain)
	if err != nil {
		return fmt.Errorf("failed to parse signer: %w", err)
	}
	sig, err := batchverify.ParseSignature(c.Args.Signature, "")
	if err != nil {
		return fmt.Errorf("failed to parse signature: %w", err)
	}

	if err := sig.VerifyWith([]byte(c.Args.Message), expected, digest); err != nil {
		return err
	}
	fmt.Fprintln(c.app.stdout, "OK")
	return nil
}

// errBatchFailures is returned when at least one batch record fails.
var errBatchFailures = errors.New("some records failed verification")

// batchCommand verifies a file of signed messages.
type batchCommand struct {
	app *app

	Format  string `long:"format" choice:"json" choice:"csv" description:"Input format; inferred from the file extension when empty"`
	Workers int    `short:"w" long:"workers" description:"Concurrent verifications; GOMAXPROCS when zero"`
	Args    struct {
		File string `positional-arg-name:"file" required:"true"`
	} `positional-args:"yes"`
}

func (c *batchCommand) Execute(args []string) error {
	chain, err := c.app.cfg.chain()
	if err != nil {
		return err
	}
	digest, err := c.app.cfg.digest()
	if err != nil {
		return err
	}
	parser, err := batchverify.ParserFor(c.Format, c.Args.File)
	if err != nil {
		return err
	}

	config := batchverify.DefaultConfig()
	config.Chain = chain
	config.Digest = digest
	if c.Workers > 0 {
		config.Workers = c.Workers
	}

	verifier := batchverify.NewVerifier().WithParser(parser).WithConfig(config)
	results, err := verifier.VerifyFile(context.Background(), c.Args.File)
	if err != nil {
		return err
	}

	for _, res := range results {
		if !res.Verified {
			fmt.Fprintf(c.app.stdout, "record %d: FAIL %v\n", res.Index, res.Err)
		}
	}
	summary := batchverify.Summarize(results)
	fmt.Fprintf(c.app.stdout, "verified %s of %s records, %s failed\n",
		humanize.Comma(int64(summary.Verified)),
		humanize.Comma(int64(summary.Total)),
		humanize.Comma(int64(summary.Failed)))

	if summary.Failed > 0 {
		return errBatchFailures
	}
	return nil
}

// accountCommand lists an account's keys and optionally checks a password
// against them.
type accountCommand struct {
	app *app

	Node    string `short:"n" long:"node" env:"HIVE_NODE" description:"Hive API node URL"`
	Timeout int    `long:"timeout" description:"Request timeout in seconds"`
	Check   bool   `long:"check" description:"Prompt for the master password and report which roles it controls"`
	Args    struct {
		Name string `positional-arg-name:"account" required:"true"`
	} `positional-args:"yes"`
}

func (c *accountCommand) Execute(args []string) error {
	chain, err := c.app.cfg.chain()
	if err != nil {
		return err
	}

	timeout := time.Duration(c.Timeout) * time.Second
	if timeout <= 0 {
		timeout = hiverpc.DefaultTimeout
	}
	client := hiverpc.NewClient(c.Node).WithHTTPClient(&http.Client{Timeout: timeout})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	acct, err := client.GetAccount(ctx, c.Args.Name)
	if err != nil {
		return fmt.Errorf("failed to fetch account %s: %w", c.Args.Name, err)
	}

	auths := []struct {
		role string
		auth hiverpc.Authority
	}{
		{hivekeys.RoleOwner, acct.Owner},
		{hivekeys.RoleActive, acct.Active},
		{hivekeys.RolePosting, acct.Posting},
	}
	for _, a := range auths {
		for _, ka := range a.auth.KeyAuths {
			fmt.Fprintf(c.app.stdout, "%-8s %s weight %d/%d\n", a.role, ka.Key,
				ka.Weight, a.auth.WeightThreshold)
		}
		for _, aa := range a.auth.AccountAuths {
			fmt.Fprintf(c.app.stdout, "%-8s @%s weight %d/%d\n", a.role,
				aa.Account, aa.Weight, a.auth.WeightThreshold)
		}
	}
	fmt.Fprintf(c.app.stdout, "%-8s %s\n", hivekeys.RoleMemo, acct.MemoKey)

	if !c.Check {
		return nil
	}

	password, err := c.app.secret(envPassword, "Master password for "+acct.Name+": ")
	if err != nil {
		return err
	}
	var controlled []string
	for _, role := range allRoles {
		key, err := hivekeys.FromCredentials(acct.Name, password, role)
		if err != nil {
			return fmt.Errorf("failed to derive %s key: %w", role, err)
		}
		if listed, ok := acct.RoleOf(key.Public(), chain); ok && listed == role {
			controlled = append(controlled, role)
		}
	}

	if len(controlled) == 0 {
		fmt.Fprintln(c.app.stdout, "password controls no role")
		return nil
	}
	fmt.Fprintf(c.app.stdout, "password controls: %s\n", strings.Join(controlled, ", "))
	return nil
}
