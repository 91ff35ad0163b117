// Package money separates the two representations a currency amount has in
// this service: a DisplayAmount is what a human typed or sees (rupees, may
// carry a fractional part), a Paise value is what the store holds (integer
// minor units). Conversion between them happens exactly once, here.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount reports a non-numeric display amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Paise is a stored amount in integer minor units (1 rupee = 100 paise).
// Signed: expenses and refunds are both representable.
type Paise int64

// DisplayAmount is a human-facing amount in major units (rupees).
// It must never be stored directly; call ToPaise at the storage boundary.
type DisplayAmount struct {
	d decimal.Decimal
}

// ParseDisplayAmount parses a decimal string like "125.50" into a
// DisplayAmount. Non-numeric input yields ErrInvalidAmount.
func ParseDisplayAmount(s string) (DisplayAmount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return DisplayAmount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return DisplayAmount{d: d}, nil
}

// DisplayAmountFromFloat wraps a float64 major-unit amount.
func DisplayAmountFromFloat(f float64) DisplayAmount {
	return DisplayAmount{d: decimal.NewFromFloat(f)}
}

// ToPaise converts the display amount to stored minor units,
// rounding half away from zero at paise precision.
func (a DisplayAmount) ToPaise() Paise {
	return Paise(a.d.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// String renders the amount with two fractional digits, e.g. "125.50".
func (a DisplayAmount) String() string {
	return a.d.StringFixed(2)
}

// Float returns the amount as a float64 and whether the conversion was
// exact. For display-oriented consumers only.
func (a DisplayAmount) Float() (float64, bool) {
	return a.d.Float64()
}

// PaiseFromFloat accepts a JSON number that claims to already be in minor
// units. A fractional part means the caller is holding a display amount and
// skipped the conversion boundary, so it is rejected rather than rounded.
func PaiseFromFloat(f float64) (Paise, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not an integer minor-unit amount", ErrInvalidAmount, f)
	}
	return Paise(f), nil
}

// Rupees renders a stored amount back as a display amount.
func (p Paise) Rupees() DisplayAmount {
	return DisplayAmount{d: decimal.NewFromInt(int64(p)).Div(decimal.NewFromInt(100))}
}
