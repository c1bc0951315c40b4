package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
	"golang.org/x/term"
)

// Environment variables holding secrets.  Secrets are never accepted as
// flags so they do not end up in shell history or process listings.
const (
	envPassword = "HIVE_PASSWORD"
	envWIF      = "HIVE_WIF"
)

// app carries the state shared by all commands.
type app struct {
	cfg    config
	stdout io.Writer

	// lookupEnv and readSecret are replaced in tests.
	lookupEnv  func(string) (string, bool)
	readSecret func(prompt string) (string, error)
}

func newApp() *app {
	return &app{
		cfg:        defaultConfig(),
		stdout:     os.Stdout,
		lookupEnv:  os.LookupEnv,
		readSecret: promptSecret,
	}
}

// setup applies the logging options once flags are parsed.
func (a *app) setup() error {
	if !setLogLevels(a.cfg.DebugLevel) {
		return fmt.Errorf("invalid debug level %q", a.cfg.DebugLevel)
	}
	if a.cfg.LogDir != "" {
		if err := initLogRotator(filepath.Join(a.cfg.LogDir, logFilename)); err != nil {
			return err
		}
	}
	return nil
}

// secret returns the value of the environment variable env, or prompts for it
// when unset.
func (a *app) secret(env, prompt string) (string, error) {
	if v, ok := a.lookupEnv(env); ok && v != "" {
		hcliLog.Debugf("Using secret from %s", env)
		return v, nil
	}
	s, err := a.readSecret(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	if s == "" {
		return "", errors.New("no secret provided")
	}
	return s, nil
}

// privateKey reads a WIF through secret and decodes it.
func (a *app) privateKey() (hivekeys.PrivateKey, error) {
	wif, err := a.secret(envWIF, "Private key (WIF): ")
	if err != nil {
		return hivekeys.PrivateKey{}, err
	}
	key, err := hivekeys.FromWIF(strings.TrimSpace(wif))
	if err != nil {
		return hivekeys.PrivateKey{}, fmt.Errorf("failed to decode private key: %w", err)
	}
	return key, nil
}

// promptSecret reads a line from stdin without echo when stdin is a terminal.
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
