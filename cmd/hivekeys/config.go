package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
)

const (
	defaultEnvFile    = ".env"
	defaultLogLevel   = "info"
	defaultChain      = "hive"
	defaultDigest     = "sha256"
	defaultNodeURL    = "https://api.hive.blog"
	defaultRPCTimeout = 30 // seconds
)

// config defines the global options shared by every command.
type config struct {
	EnvFile    string `long:"envfile" env:"HIVEKEYS_ENVFILE" description:"Load environment variables from this file if it exists"`
	DebugLevel string `short:"d" long:"debuglevel" env:"HIVEKEYS_DEBUGLEVEL" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogDir     string `long:"logdir" env:"HIVEKEYS_LOGDIR" description:"Also write logs to a rotating file in this directory"`
	Chain      string `long:"chain" env:"HIVEKEYS_CHAIN" choice:"hive" choice:"steem" choice:"eos" description:"Chain whose address prefix is used"`
	Digest     string `long:"digest" env:"HIVEKEYS_DIGEST" choice:"sha256" choice:"keccak256" description:"Hash applied to messages before signing or recovery"`
}

// defaultConfig returns the global options before flags and environment are
// applied.
func defaultConfig() config {
	return config{
		EnvFile:    defaultEnvFile,
		DebugLevel: defaultLogLevel,
		Chain:      defaultChain,
		Digest:     defaultDigest,
	}
}

// chain resolves the configured chain.
func (cfg *config) chain() (hivekeys.Chain, error) {
	return hivekeys.ParseChain(cfg.Chain)
}

// digest resolves the configured digest.
func (cfg *config) digest() (hivekeys.Digest, error) {
	switch cfg.Digest {
	case "", "sha256":
		return hivekeys.SHA256, nil
	case "keccak256":
		return hivekeys.Keccak256, nil
	}
	return nil, fmt.Errorf("unknown digest %q", cfg.Digest)
}

// loadEnvFile loads variables from path into the process environment without
// overriding variables that are already set.  A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// preParseEnvFile finds the env file before the full parse so the variables
// it defines can feed the env tags of every option.
func preParseEnvFile(args []string) string {
	pre := struct {
		EnvFile string `long:"envfile" env:"HIVEKEYS_ENVFILE"`
	}{EnvFile: defaultEnvFile}

	parser := flags.NewParser(&pre, flags.IgnoreUnknown)
	parser.ParseArgs(args)
	return pre.EnvFile
}

// newParser builds the command line parser with every command registered.
func newParser(cfg *config, app *app) *flags.Parser {
	parser := flags.NewNamedParser(filepath.Base(os.Args[0]), flags.Default)
	parser.AddGroup("Global Options", "", cfg)

	parser.AddCommand("derive", "Derive keys from an account and password",
		"Derive the private key and address of one or all roles from an "+
			"account name and its master password.  The password is read "+
			"from HIVE_PASSWORD or prompted for.",
		&deriveCommand{app: app})
	parser.AddCommand("pubkey", "Print the address of a private key",
		"Print the public key and address of a WIF private key read from "+
			"HIVE_WIF or prompted for.",
		&pubkeyCommand{app: app})
	parser.AddCommand("sign", "Sign a message",
		"Sign a message with a WIF private key read from HIVE_WIF or "+
			"prompted for.",
		&signCommand{app: app})
	parser.AddCommand("recover", "Recover the signer of a message",
		"Recover the address that produced a signature over a message.",
		&recoverCommand{app: app})
	parser.AddCommand("verify", "Verify a signature against an address",
		"Verify that a signature over a message was produced by an address.  "+
			"Exits with status 1 on mismatch.",
		&verifyCommand{app: app})
	parser.AddCommand("batch", "Verify a file of signed messages",
		"Verify every record of a JSON or CSV file of signed messages.",
		&batchCommand{app: app, Workers: 0})
	parser.AddCommand("account", "Show the keys of an on-chain account",
		"Fetch an account from a Hive API node and list its keys, optionally "+
			"checking which roles a master password controls.",
		&accountCommand{app: app, Node: defaultNodeURL, Timeout: defaultRPCTimeout})

	return parser
}
