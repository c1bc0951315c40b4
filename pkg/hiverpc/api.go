package hiverpc

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
	"github.com/mahdiidarabi/hivekeys/pkg/hivetx"
)

// KeyAuth is a weighted public key of an authority.  Nodes send it as the
// pair ["STM...", weight].
type KeyAuth struct {
	Key    string
	Weight uint16
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *KeyAuth) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("key auth has %d elements, expected 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &k.Key); err != nil {
		return fmt.Errorf("failed to parse key auth key: %w", err)
	}
	if err := json.Unmarshal(pair[1], &k.Weight); err != nil {
		return fmt.Errorf("failed to parse key auth weight: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (k KeyAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{k.Key, k.Weight})
}

// AccountAuth is a weighted account of an authority.
type AccountAuth struct {
	Account string
	Weight  uint16
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AccountAuth) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("account auth has %d elements, expected 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &a.Account); err != nil {
		return fmt.Errorf("failed to parse account auth name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &a.Weight); err != nil {
		return fmt.Errorf("failed to parse account auth weight: %w", err)
	}
	return nil
}

// Authority is the set of keys and accounts that can act for one role.
type Authority struct {
	WeightThreshold uint32        `json:"weight_threshold"`
	AccountAuths    []AccountAuth `json:"account_auths"`
	KeyAuths        []KeyAuth     `json:"key_auths"`
}

// PublicKeys parses every key of the authority.
func (a Authority) PublicKeys(chain hivekeys.Chain) ([]hivekeys.PublicKey, error) {
	keys := make([]hivekeys.PublicKey, 0, len(a.KeyAuths))
	for _, ka := range a.KeyAuths {
		pub, err := hivekeys.ParseAddress(ka.Key, chain)
		if err != nil {
			return nil, fmt.Errorf("failed to parse authority key %s: %w",
				ka.Key, err)
		}
		keys = append(keys, pub)
	}
	return keys, nil
}

// Account holds the fields of an account the key tooling needs.
type Account struct {
	Name    string    `json:"name"`
	Owner   Authority `json:"owner"`
	Active  Authority `json:"active"`
	Posting Authority `json:"posting"`
	MemoKey string    `json:"memo_key"`
}

// RoleOf reports which role of the account lists pub, checking owner, active,
// posting and memo in that order.
func (a Account) RoleOf(pub hivekeys.PublicKey, chain hivekeys.Chain) (string, bool) {
	addr, err := pub.Address(chain)
	if err != nil {
		return "", false
	}

	roles := []struct {
		name string
		auth Authority
	}{
		{hivekeys.RoleOwner, a.Owner},
		{hivekeys.RoleActive, a.Active},
		{hivekeys.RolePosting, a.Posting},
	}
	for _, r := range roles {
		for _, ka := range r.auth.KeyAuths {
			if ka.Key == addr {
				return r.name, true
			}
		}
	}
	if a.MemoKey == addr {
		return hivekeys.RoleMemo, true
	}
	return "", false
}

// GetAccounts fetches accounts by name.  Unknown names are left out of the
// result.
func (c *Client) GetAccounts(ctx context.Context, names []string) ([]Account, error) {
	var accounts []Account
	err := c.Call(ctx, "condenser_api.get_accounts", []interface{}{names}, &accounts)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccount fetches a single account.
func (c *Client) GetAccount(ctx context.Context, name string) (*Account, error) {
	accounts, err := c.GetAccounts(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Name == name {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("account %q not found", name)
}

// DynamicGlobalProperties holds the chain head fields used to build
// transactions.
type DynamicGlobalProperties struct {
	HeadBlockNumber uint32 `json:"head_block_number"`
	HeadBlockID     string `json:"head_block_id"`
	Time            string `json:"time"`
}

// RefBlock derives the reference block number and prefix a transaction built
// on the current head must carry.
func (p DynamicGlobalProperties) RefBlock() (uint16, uint32, error) {
	id, err := hex.DecodeString(p.HeadBlockID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode head block id: %w", err)
	}
	if len(id) < 8 {
		return 0, 0, fmt.Errorf("head block id is %d bytes, expected at least 8",
			len(id))
	}
	return uint16(p.HeadBlockNumber & 0xffff), binary.LittleEndian.Uint32(id[4:8]), nil
}

// GetDynamicGlobalProperties fetches the current chain head.
func (c *Client) GetDynamicGlobalProperties(ctx context.Context) (*DynamicGlobalProperties, error) {
	var props DynamicGlobalProperties
	err := c.Call(ctx, "condenser_api.get_dynamic_global_properties", nil, &props)
	if err != nil {
		return nil, err
	}
	return &props, nil
}

// BroadcastTransaction submits a signed transaction.
func (c *Client) BroadcastTransaction(ctx context.Context, tx *hivetx.Transaction) error {
	if len(tx.Signatures) == 0 {
		return hivetx.ErrUnsigned
	}
	return c.Call(ctx, "condenser_api.broadcast_transaction",
		[]interface{}{tx}, nil)
}
