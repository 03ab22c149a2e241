package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative monetary value in euros. It marshals to a JSON
// number with two decimals so the frontend can treat it as a plain number.
type Amount struct {
	d decimal.Decimal
}

// NewAmount wraps d as an Amount.
func NewAmount(d decimal.Decimal) *Amount {
	return &Amount{d: d}
}

// MustAmount parses a plain decimal string ("35000.00") and panics on failure.
// Intended for tests and static tables.
func MustAmount(s string) *Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("model: invalid amount %q: %v", s, err))
	}
	return &Amount{d: d}
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Cents returns the amount in minor units, rounded half away from zero.
func (a Amount) Cents() int64 {
	return a.d.Shift(2).Round(0).IntPart()
}

// Equal reports whether two amounts have the same value.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

func (a Amount) String() string {
	return a.d.StringFixed(2)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a quoted plain decimal.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	a.d = d
	return nil
}
