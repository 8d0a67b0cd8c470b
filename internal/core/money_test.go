package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "12.34", want: "12.34"},
		{in: "12,34", want: "12.34"},
		{in: " 1 250,50 ", want: "1250.5"},
		{in: "1\u00a0000", want: "1000"},
		{in: "0", want: "0"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "+3", wantErr: true},
		{in: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseOptionalAmount(t *testing.T) {
	v, err := ParseOptionalAmount("  ")
	require.NoError(t, err)
	assert.False(t, v.Valid)

	v, err = ParseOptionalAmount("15")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "15", v.Decimal.String())

	_, err = ParseOptionalAmount("x")
	assert.Error(t, err)
}

func TestFormatRubles(t *testing.T) {
	tests := map[string]string{
		"0":          "0\u00a0₽",
		"999":        "999\u00a0₽",
		"1000":       "1\u00a0000\u00a0₽",
		"1234567.49": "1\u00a0234\u00a0567\u00a0₽",
		"1234567.5":  "1\u00a0234\u00a0568\u00a0₽",
		"-1500":      "-1\u00a0500\u00a0₽",
		"-0.2":       "0\u00a0₽",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatRubles(decimal.RequireFromString(in)), in)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1\u00a0234,5", FormatNumber(decimal.RequireFromString("1234.5"), 1))
	assert.Equal(t, "12", FormatNumber(decimal.RequireFromString("12.04"), 1))
	assert.Equal(t, "-40", FormatNumber(decimal.NewFromInt(-40), 0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.5%", FormatPercent(decimal.RequireFromString("12.49"), 1))
	assert.Equal(t, "0%", FormatPercent(decimal.Zero, 0))
}
