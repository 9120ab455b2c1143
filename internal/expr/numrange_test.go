package expr

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseDecimalRange(t *testing.T) {
	cases := []struct {
		in       string
		min, max string
	}{
		{"10..20", "10", "20"},
		{"10..", "10", ""},
		{"..20", "", "20"},
		{" >= 15 ", "15", ""},
		{"<=12,5", "", "12.5"},
		{"=7", "7", "7"},
		{">5", "5", ""},
		{"<5", "", "5"},
		{"15", "15", "15"},
		{"1,5..2,5", "1.5", "2.5"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			r, err := ParseDecimalRange(tc.in)
			require.NoError(t, err)
			if tc.min == "" {
				assert.Nil(t, r.Min)
			} else {
				require.NotNil(t, r.Min)
				assert.True(t, r.Min.Equal(dec(tc.min)), "min %s", r.Min)
			}
			if tc.max == "" {
				assert.Nil(t, r.Max)
			} else {
				require.NotNil(t, r.Max)
				assert.True(t, r.Max.Equal(dec(tc.max)), "max %s", r.Max)
			}
		})
	}
}

func TestParseDecimalRangeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", ">", "<=", "10..x", "=", "1-2", "1e5", "NaN", ">=1e999999999", "1..2E3", "0x10", "Inf"} {
		_, err := ParseDecimalRange(in)
		assert.ErrorIs(t, err, ErrInvalidRange, "input %q", in)
	}
}

func TestParseDecimal(t *testing.T) {
	for in, want := range map[string]string{"12,5": "12.5", " -3 ": "-3", "+0.25": "0.25", "100": "100"} {
		got, err := ParseDecimal(in)
		require.NoError(t, err, "input %q", in)
		assert.True(t, got.Equal(dec(want)), "input %q got %s", in, got)
	}
	for _, in := range []string{"", "1e5", "1E-5", "NaN", ".5", "5.", "1.0000000000001", "1 000"} {
		_, err := ParseDecimal(in)
		assert.ErrorIs(t, err, ErrInvalidNumber, "input %q", in)
	}
}

func TestIsPlainDecimal(t *testing.T) {
	assert.True(t, IsPlainDecimal(dec("12.3456")))
	assert.True(t, IsPlainDecimal(dec("100")))
	assert.False(t, IsPlainDecimal(dec("1e999999999")))
	assert.False(t, IsPlainDecimal(dec("1e-999999999")))
	assert.False(t, IsPlainDecimal(dec("1e3")))
}

func TestParseIntRange(t *testing.T) {
	r, err := ParseIntRange("5..10")
	require.NoError(t, err)
	assert.True(t, r.Contains(5))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(11))

	r, err = ParseIntRange(">=3")
	require.NoError(t, err)
	assert.Nil(t, r.Max)
	assert.EqualValues(t, 3, *r.Min)

	_, err = ParseIntRange("2.5")
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = ParseIntRange("1,5")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDecimalRangeContains(t *testing.T) {
	r, err := ParseDecimalRange("10..20")
	require.NoError(t, err)
	assert.True(t, r.Contains(dec("10")))
	assert.True(t, r.Contains(dec("20")))
	assert.False(t, r.Contains(dec("20.01")))
	assert.True(t, DecimalRange{}.IsZero())
	assert.False(t, r.IsZero())
}
