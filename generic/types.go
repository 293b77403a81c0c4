/*
Package generic provides the domain-agnostic primitives of the forecasting engine.

PURPOSE:
  This package contains the value types every forecast is built from. Whether
  projecting a paycheck, a rent bill, or a credit-card payment, the same money,
  date, period and recurrence types are used.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A fixed-point money value (never float64 internally)

DESIGN PRINCIPLES:
  1. Immutability: Every operation returns a new value
  2. Precision: Uses decimal.Decimal to avoid floating-point drift across
     dozens of chained additions per forecast
  3. Boundary conversion: float64 only appears at the edges (JSON, forms)
     and is rejected there when it is NaN or infinite

USAGE:
  rent := generic.MustAmount("1500.00")
  paycheck, err := generic.AmountFromFloat(2000)
  balance := paycheck.Sub(rent)

SEE ALSO:
  - time.go: Date (local-noon calendar day)
  - period.go: Inclusive date ranges
  - schedule.go: Frequency and recurrence expansion
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Fixed-point money value
// =============================================================================

// Amount is a signed money value in the account's single currency.
// The zero value is $0.00.
type Amount struct {
	Value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// NewAmountFromInt creates an amount of whole currency units.
func NewAmountFromInt(value int64) Amount {
	return Amount{Value: decimal.NewFromInt(value)}
}

// NewAmountFromCents creates an amount from integer minor units.
func NewAmountFromCents(cents int64) Amount {
	return Amount{Value: decimal.New(cents, -2)}
}

// AmountFromFloat converts a boundary float into an Amount.
// NaN and ±Inf are rejected; decimal.NewFromFloat would panic on them.
func AmountFromFloat(value float64) (Amount, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Amount{}, ErrNonFiniteAmount
	}
	return Amount{Value: decimal.NewFromFloat(value)}, nil
}

// ParseAmount parses a decimal string such as "1234.56".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d}, nil
}

// MustAmount parses s and panics if it is not a decimal. For literals in code and tests.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s)} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg()} }
func (a Amount) Abs() Amount                  { return Amount{Value: a.Value.Abs()} }
func (a Amount) Round(places int32) Amount    { return Amount{Value: a.Value.Round(places)} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterOrEqual(b Amount) bool { return a.Value.GreaterThanOrEqual(b.Value) }
func (a Amount) LessOrEqual(b Amount) bool    { return a.Value.LessThanOrEqual(b.Value) }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Float64 is for display and JSON only. Never feed it back into arithmetic.
func (a Amount) Float64() float64 { return a.Value.InexactFloat64() }

// String formats the amount with two decimal places.
func (a Amount) String() string { return a.Value.StringFixed(2) }

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.StringFixed(2)), nil
}

// UnmarshalJSON accepts both numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Value.UnmarshalJSON(data)
}

// Sum adds up a list of amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
