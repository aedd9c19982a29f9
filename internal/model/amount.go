package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fraction digits carried by every amount.
const AmountScale = 2

var (
	// ErrInvalidAmount indicates the value is not a decimal number.
	ErrInvalidAmount = errors.New("amount must be a decimal number")

	// ErrAmountPrecision indicates more than AmountScale fraction digits.
	ErrAmountPrecision = errors.New("amount must have at most 2 decimal places")
)

// maxMinorUnits bounds every amount so its cents fit in an int64
var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// Amount is a fixed-point money value. It is stored and serialised as a
// decimal string ("75.50"), never as a binary float.
type Amount struct {
	d decimal.Decimal
}

// ZeroAmount is the empty total of a new campaign.
var ZeroAmount = Amount{}

// ParseAmount parses a decimal string. Blank input is an error.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Round(AmountScale)) {
		return Amount{}, fmt.Errorf("%w: %q", ErrAmountPrecision, s)
	}
	if d.Abs().Shift(AmountScale).GreaterThan(maxMinorUnits) {
		return Amount{}, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return Amount{d: d}, nil
}

// MustParseAmount is ParseAmount for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromMinorUnits builds an amount from cents.
func AmountFromMinorUnits(cents int64) Amount {
	return Amount{d: decimal.New(cents, -AmountScale)}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Cmp compares a and b the way decimal.Cmp does.
func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

// Equal reports whether a and b are numerically equal ("50" == "50.00").
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) IsPositive() bool { return a.d.IsPositive() }
func (a Amount) IsNegative() bool { return a.d.IsNegative() }
func (a Amount) IsZero() bool     { return a.d.IsZero() }

// MinorUnits returns the amount in cents, as payment processors expect.
// ok is false when the cents do not fit in an int64, which only happens for
// totals built up by arithmetic past the range ParseAmount accepts.
func (a Amount) MinorUnits() (cents int64, ok bool) {
	shifted := a.d.Shift(AmountScale).Round(0)
	if shifted.Abs().GreaterThan(maxMinorUnits) {
		return 0, false
	}
	return shifted.IntPart(), true
}

// String renders the amount with exactly two fraction digits.
func (a Amount) String() string {
	return a.d.StringFixed(AmountScale)
}

// MarshalJSON writes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON number.
// Stored documents written by older clients may carry either form.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Amount{}
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	// Legacy totals were written via float-to-string and may carry noise digits.
	*a = Amount{d: d.Round(AmountScale)}
	return nil
}
