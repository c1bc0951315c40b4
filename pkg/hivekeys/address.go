package hivekeys

import (
	"fmt"
	"strings"

	"github.com/mahdiidarabi/hivekeys/pkg/base58check"
)

// Chain identifies a chain whose public keys are displayed with a textual
// prefix.
type Chain int

const (
	ChainHive Chain = iota
	ChainSteem
	ChainEOS
)

// chainInfo is one row of the prefix table.
type chainInfo struct {
	name   string
	prefix string
}

// chains is the closed chain to address prefix table.  Hive kept Steem's
// prefix when it forked.
var chains = map[Chain]chainInfo{
	ChainHive:  {name: "hive", prefix: "STM"},
	ChainSteem: {name: "steem", prefix: "STM"},
	ChainEOS:   {name: "eos", prefix: "EOS"},
}

// ParseChain looks a chain up by its lower-case name.
func ParseChain(name string) (Chain, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, info := range chains {
		if info.name == name {
			return c, nil
		}
	}
	return 0, makeError(ErrUnknownChain, fmt.Sprintf("unknown chain %q", name))
}

// String returns the chain name.
func (c Chain) String() string {
	if info, ok := chains[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Chain(%d)", int(c))
}

// Prefix returns the address prefix of the chain.
func (c Chain) Prefix() (string, error) {
	info, ok := chains[c]
	if !ok {
		return "", makeError(ErrUnknownChain, fmt.Sprintf("unknown chain %d", int(c)))
	}
	return info.prefix, nil
}

// FormatAddress renders pub as prefix ‖ base58check(pub, PubKey).
func FormatAddress(pub PublicKey, chain Chain) (string, error) {
	prefix, err := chain.Prefix()
	if err != nil {
		return "", err
	}
	if pub.IsZero() {
		return "", makeError(ErrInvalidPublicKey, "cannot format the zero public key")
	}

	encoded, err := base58check.Encode(pub.key[:], base58check.PubKey)
	if err != nil {
		return "", err
	}
	return prefix + encoded, nil
}

// Address is shorthand for FormatAddress(p, chain).
func (p PublicKey) Address(chain Chain) (string, error) {
	return FormatAddress(p, chain)
}

// ParseAddress reverses FormatAddress.
func ParseAddress(addr string, chain Chain) (PublicKey, error) {
	prefix, err := chain.Prefix()
	if err != nil {
		return PublicKey{}, err
	}
	if !strings.HasPrefix(addr, prefix) {
		str := fmt.Sprintf("address %q does not start with the %s prefix %q",
			addr, chain, prefix)
		return PublicKey{}, makeError(ErrInvalidAddress, str)
	}

	b, err := base58check.Decode(addr[len(prefix):], base58check.PubKey)
	if err != nil {
		return PublicKey{}, err
	}
	return ParsePublicKey(b)
}
