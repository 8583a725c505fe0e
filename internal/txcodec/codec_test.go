package txcodec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swipetrade/perps-service/pkg/types"
)

func TestToHex(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{
			name:     "int",
			input:    255,
			expected: "0xff",
		},
		{
			name:     "int64",
			input:    int64(16),
			expected: "0x10",
		},
		{
			name:     "uint64",
			input:    uint64(0),
			expected: "0x0",
		},
		{
			name:     "float64-from-json",
			input:    float64(1000000),
			expected: "0xf4240",
		},
		{
			name:     "decimal-string",
			input:    "255",
			expected: "0xff",
		},
		{
			name:     "hex-string-passthrough",
			input:    "0x10",
			expected: "0x10",
		},
		{
			name:     "negative-hex-string-passthrough",
			input:    "-0x10",
			expected: "-0x10",
		},
		{
			name:     "big-int",
			input:    big.NewInt(2500000),
			expected: "0x2625a0",
		},
		{
			name:     "unparseable-string-passthrough",
			input:    "not-a-number",
			expected: "not-a-number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHex(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestToHex_Nil(t *testing.T) {
	assert.Nil(t, ToHex(nil))

	var b *big.Int
	assert.Nil(t, ToHex(b))
}

func TestToHex_Idempotent(t *testing.T) {
	// Converting an already-converted value must not change it.
	first := ToHex(255)
	require.NotNil(t, first)

	second := ToHex(*first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestNormalize_FieldAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  types.RawTransaction
		want types.UnsignedTransaction
	}{
		{
			name: "canonical-field-names",
			raw: types.RawTransaction{
				"to":    "0xabc0000000000000000000000000000000000001",
				"value": float64(0),
				"data":  "0xdeadbeef",
				"gas":   float64(21000),
				"nonce": float64(7),
			},
			want: types.UnsignedTransaction{
				To:      "0xabc0000000000000000000000000000000000001",
				Value:   "0x0",
				Data:    "0xdeadbeef",
				Gas:     "0x5208",
				Nonce:   "0x7",
				ChainID: "0x2105",
			},
		},
		{
			name: "aliased-field-names",
			raw: types.RawTransaction{
				"to_address": "0xabc0000000000000000000000000000000000001",
				"amount":     float64(1000),
				"input":      "deadbeef",
				"gasLimit":   float64(21000),
			},
			want: types.UnsignedTransaction{
				To:      "0xabc0000000000000000000000000000000000001",
				Value:   "0x3e8",
				Data:    "0xdeadbeef",
				Gas:     "0x5208",
				ChainID: "0x2105",
			},
		},
		{
			name: "chain-id-from-payload",
			raw: types.RawTransaction{
				"to":       "0xabc0000000000000000000000000000000000001",
				"chain_id": float64(1),
			},
			want: types.UnsignedTransaction{
				To:      "0xabc0000000000000000000000000000000000001",
				Value:   "0x0",
				ChainID: "0x1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, 8453)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_NonceZeroKept(t *testing.T) {
	// Nonce zero is a valid nonce and must not be treated as absent.
	raw := types.RawTransaction{
		"to":    "0xabc0000000000000000000000000000000000001",
		"nonce": float64(0),
	}

	got, err := Normalize(raw, 8453)
	require.NoError(t, err)
	assert.Equal(t, "0x0", got.Nonce)
}

func TestNormalize_FeeFields(t *testing.T) {
	t.Run("eip1559-preferred-over-legacy", func(t *testing.T) {
		raw := types.RawTransaction{
			"to":                   "0xabc0000000000000000000000000000000000001",
			"maxFeePerGas":         float64(2000000000),
			"maxPriorityFeePerGas": float64(1000000000),
			"gasPrice":             float64(3000000000),
		}

		got, err := Normalize(raw, 8453)
		require.NoError(t, err)
		assert.Equal(t, "0x77359400", got.MaxFeePerGas)
		assert.Equal(t, "0x3b9aca00", got.MaxPriorityFeePerGas)
		assert.Empty(t, got.GasPrice, "legacy gasPrice must be dropped when 1559 fields are present")
	})

	t.Run("legacy-gas-price-only", func(t *testing.T) {
		raw := types.RawTransaction{
			"to":       "0xabc0000000000000000000000000000000000001",
			"gasPrice": float64(3000000000),
		}

		got, err := Normalize(raw, 8453)
		require.NoError(t, err)
		assert.Equal(t, "0xb2d05e00", got.GasPrice)
		assert.Empty(t, got.MaxFeePerGas)
		assert.Empty(t, got.MaxPriorityFeePerGas)
	})
}

func TestNormalize_MissingTo(t *testing.T) {
	_, err := Normalize(types.RawTransaction{"value": float64(1)}, 8453)
	assert.Error(t, err)
}

func TestNormalize_EmptyAliasFallsThrough(t *testing.T) {
	// An empty "to" must not shadow a populated "to_address".
	raw := types.RawTransaction{
		"to":         "",
		"to_address": "0xabc0000000000000000000000000000000000001",
	}

	got, err := Normalize(raw, 8453)
	require.NoError(t, err)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", got.To)
}

func TestHexAddress(t *testing.T) {
	assert.Equal(t, "0xabc", HexAddress("0xabc"))
	assert.Equal(t, "0xabc", HexAddress("abc"))
}
