package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testFormats = map[string]string{
	"binanceus": "{base}USDT",
	"okx":       "{base}-USDT",
	"gateio":    "{base}_USDT",
	"kraken":    "{base}USD",
	"kucoin":    "{base}-USDT",
	"coinbase":  "{base}-USD",
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizerFromTable(testFormats)

	tests := []struct {
		name      string
		canonical string
		venue     string
		want      string
		ok        bool
	}{
		{"binance dashed", "BTC-USDT", "binanceus", "BTCUSDT", true},
		{"okx from compact", "BTCUSDT", "okx", "BTC-USDT", true},
		{"gateio lower case", "eth/usdt", "gateio", "ETH_USDT", true},
		{"kraken usd quote", "BTC-USD", "kraken", "BTCUSD", true},
		{"coinbase from usdt", "SOLUSDT", "coinbase", "SOL-USD", true},
		{"kucoin underscores", "SOL_USDT", "kucoin", "SOL-USDT", true},
		{"unknown venue", "BTC-USDT", "ftx", "BTC-USDT", false},
		{"unknown quote", "BTC-EUR", "okx", "BTC-EUR", false},
		{"quote only", "USDT", "okx", "USDT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Normalize(tt.canonical, tt.venue)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSplitPair(t *testing.T) {
	base, quote, ok := SplitPair(" btc-usdt ")
	assert.True(t, ok)
	assert.Equal(t, "BTC", base)
	assert.Equal(t, "USDT", quote)

	base, quote, ok = SplitPair("ETHUSD")
	assert.True(t, ok)
	assert.Equal(t, "ETH", base)
	assert.Equal(t, "USD", quote)
}
