package tradelog

import "github.com/shopspring/decimal"

// Percent is a percentage in exact decimal, e.g. 66.67 for two wins out of three.
type Percent struct {
	value decimal.Decimal
}

// P returns a Percent from any numeric value.
func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

// Ratio returns num/den × 100 rounded to PercentScale digits. A zero
// denominator returns 0.
func Ratio(num, den int) Percent {
	if den == 0 {
		return Percent{}
	}
	r := decimal.NewFromInt(int64(num)).Mul(decimal.NewFromInt(100)).DivRound(decimal.NewFromInt(int64(den)), PercentScale)
	return Percent{value: r}
}

func (p Percent) Decimal() decimal.Decimal { return p.value }
func (p Percent) Equal(q Percent) bool     { return p.value.Equal(q.value) }
func (p Percent) IsZero() bool             { return p.value.IsZero() }

func (p Percent) String() string {
	return p.value.StringFixed(PercentScale) + "%"
}

func (p Percent) SignedString() string {
	if p.value.IsZero() {
		return "-"
	}
	if p.value.IsPositive() {
		return "+" + p.String()
	}
	return p.String()
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.value.StringFixed(PercentScale)), nil
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	return p.value.UnmarshalJSON(data)
}
