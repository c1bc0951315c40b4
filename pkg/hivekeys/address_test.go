package hivekeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAddress(t *testing.T) {
	pub := testOwnerKey(t).Public()

	tests := []struct {
		chain Chain
		want  string
	}{
		{ChainHive, testOwnerAddr},
		{ChainSteem, testOwnerAddr},
		{ChainEOS, "EOS5jixkNBqJXNtX9vy2GjaqpX2d5jXrcjRXgh1WU5fXZhnDJrLM8"},
	}

	for _, test := range tests {
		t.Run(test.chain.String(), func(t *testing.T) {
			addr, err := FormatAddress(pub, test.chain)
			require.NoError(t, err)
			assert.Equal(t, test.want, addr)

			parsed, err := ParseAddress(addr, test.chain)
			require.NoError(t, err)
			assert.True(t, parsed.Equal(pub))
		})
	}
}

func TestFormatAddressErrors(t *testing.T) {
	_, err := FormatAddress(testOwnerKey(t).Public(), Chain(42))
	assert.ErrorIs(t, err, ErrUnknownChain)

	_, err = FormatAddress(PublicKey{}, ChainHive)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestParseAddressErrors(t *testing.T) {
	tests := []struct {
		name  string
		addr  string
		chain Chain
		want  error
	}{
		{
			name:  "prefix of another chain",
			addr:  testOwnerAddr,
			chain: ChainEOS,
			want:  ErrInvalidAddress,
		},
		{
			name:  "missing prefix",
			addr:  testOwnerAddr[3:],
			chain: ChainHive,
			want:  ErrInvalidAddress,
		},
		{
			name:  "tampered key material",
			addr:  "STM5jixkNBqJXNtX9vy2GjaqpX2d5jXrcjRXgh1WU5fXZhnDJrLM9",
			chain: ChainHive,
			want:  ErrChecksumMismatch,
		},
		{
			name:  "signature behind a prefix",
			addr:  "STM" + testHelloWire,
			chain: ChainHive,
			want:  ErrInvalidLength,
		},
		{
			name:  "unknown chain",
			addr:  testOwnerAddr,
			chain: Chain(-1),
			want:  ErrUnknownChain,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseAddress(test.addr, test.chain)
			assert.ErrorIs(t, err, test.want)
		})
	}
}

func TestParseChain(t *testing.T) {
	for _, chain := range []Chain{ChainHive, ChainSteem, ChainEOS} {
		got, err := ParseChain(chain.String())
		require.NoError(t, err)
		assert.Equal(t, chain, got)
	}

	got, err := ParseChain(" HIVE ")
	require.NoError(t, err)
	assert.Equal(t, ChainHive, got)

	_, err = ParseChain("bitcoin")
	assert.ErrorIs(t, err, ErrUnknownChain)

	assert.Equal(t, "Chain(9)", Chain(9).String())
}
