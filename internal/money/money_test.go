package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplayAmount_ToPaise(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Paise
	}{
		{name: "whole rupees", input: "500", want: 50000},
		{name: "two fractional digits", input: "125.50", want: 12550},
		{name: "one fractional digit", input: "99.9", want: 9990},
		{name: "rounds half up", input: "0.005", want: 1},
		{name: "negative amount", input: "-42.25", want: -4225},
		{name: "zero", input: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseDisplayAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.ToPaise())
		})
	}
}

func TestParseDisplayAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "abc", "12.3.4", "₹100"} {
		_, err := ParseDisplayAmount(input)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", input)
	}
}

// Paise values must never be run through the display conversion again:
// the type system separates them, and PaiseFromFloat refuses anything that
// still looks like a display amount.
func TestPaiseFromFloat(t *testing.T) {
	p, err := PaiseFromFloat(50000)
	require.NoError(t, err)
	assert.Equal(t, Paise(50000), p)

	_, err = PaiseFromFloat(125.50)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	p, err = PaiseFromFloat(-300)
	require.NoError(t, err)
	assert.Equal(t, Paise(-300), p)
}

func TestPaiseRupeesRoundTrip(t *testing.T) {
	assert.Equal(t, "125.50", Paise(12550).Rupees().String())
	assert.Equal(t, "-0.05", Paise(-5).Rupees().String())
}
