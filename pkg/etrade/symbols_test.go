package etrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionSymbol(t *testing.T) {
	tests := []struct {
		name       string
		underlying string
		callPut    CallPut
		expiry     string
		strike     float64
		want       string
	}{
		{"short symbol padded", "PLTR", CallPutPut, "2022-02-18", 23, "PLTR--220218P00023000"},
		{"fractional strike", "PLTR", CallPutPut, "2022-02-18", 23.0, "PLTR--220218P00023000"},
		{"call contract", "F", CallPutCall, "2023-06-16", 12.5, "F-----230616C00012500"},
		{"six char symbol", "GOOGLE", CallPutCall, "2022-01-21", 2800, "GOOGLE220121C02800000"},
		{"mixed case input", "pltr", CallPut("Put"), "Feb 18 2022", 23, "PLTR--220218P00023000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OptionSymbol(tt.underlying, tt.callPut, tt.expiry, tt.strike)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, optionSymbolLen)
		})
	}
}

func TestOptionSymbol_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		underlying string
		callPut    CallPut
		expiry     string
		strike     float64
	}{
		{"empty symbol", "", CallPutPut, "2022-02-18", 23},
		{"symbol too long", "TOOLONGSYM", CallPutPut, "2022-02-18", 23},
		{"bad expiry", "PLTR", CallPutPut, "not a date", 23},
		{"bad call put", "PLTR", CallPut("straddle"), "2022-02-18", 23},
		{"strike overflows encoding", "PLTR", CallPutPut, "2022-02-18", 100000},
		{"negative strike", "PLTR", CallPutPut, "2022-02-18", -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OptionSymbol(tt.underlying, tt.callPut, tt.expiry, tt.strike)
			assert.Error(t, err)
		})
	}
}

func TestToDecimalString(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		roundDown bool
		want      string
	}{
		{"sell rounds down", 19.99999, true, "19.99"},
		{"buy rounds up", 19.99999, false, "20.00"},
		{"exact cents unchanged sell", 20.01, true, "20.01"},
		{"exact cents unchanged buy", 20.01, false, "20.01"},
		{"sub cent sell", 10.123, true, "10.12"},
		{"sub cent buy", 10.123, false, "10.13"},
		{"nudge to zero skipped", 0.001, true, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toDecimalString(tt.price, tt.roundDown))
		})
	}
}
