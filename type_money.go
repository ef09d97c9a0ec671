package tradelog

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Scales used when rounding derived values. Sums are computed exactly and
// rounded once at the end.
const (
	MoneyScale   = 2  // costs, fees, net costs, returns
	PriceScale   = 10 // average prices
	PercentScale = 2  // win rates
)

// Money represents a monetary value of the account currency.
//
// The account currency is not carried by the value: broker records are all
// expressed in the account currency, the renderer provides it for display.
type Money struct {
	value      decimal.Decimal
	fractional bool // true to persist in full digits
}

// M returns a Money from any numeric value.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

// String returns the value with MoneyScale digits, or all digits for exact values.
func (m Money) String() string {
	if m.fractional {
		return m.value.String()
	}
	return m.value.StringFixed(MoneyScale)
}

// Format returns the value formatted for the given currency code (e.g. "$1,234.50").
// Unknown currencies fall back to String.
func (m Money) Format(currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return m.String()
	}
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Round(places int32) Money        { return Money{value: m.value.Round(places)} }
func (m Money) Cmp(n Money) int                 { return m.value.Cmp(n.value) }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs()} }
func (m Money) InexactFloat64() float64         { return m.value.InexactFloat64() }
func (m Money) StringFixed(places int32) string { return m.value.StringFixed(places) }

// DivRound divides m by a quantity and rounds the result to places digits.
// The result is exact: it is persisted with all its digits.
func (m Money) DivRound(q Quantity, places int32) Money {
	return Money{value: m.value.DivRound(q.value, places)}.exact()
}

// exact return a copy of money that will be persisted with all the digits.
func (m Money) exact() Money {
	m.fractional = true
	return m
}

// MarshalJSON writes the amount as a JSON number, rounded to MoneyScale
// unless the value is exact.
func (m Money) MarshalJSON() ([]byte, error) {
	if m.fractional {
		return []byte(m.value.String()), nil
	}
	return []byte(m.value.StringFixed(MoneyScale)), nil
}

// UnmarshalJSON reads a JSON number or string. Decoded values are exact.
func (m *Money) UnmarshalJSON(data []byte) error {
	if err := m.value.UnmarshalJSON(data); err != nil {
		return err
	}
	m.fractional = true
	return nil
}
