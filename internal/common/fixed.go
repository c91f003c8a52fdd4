package common

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// FixedPrecision is the number of decimal places a raw fixed-point integer
// represents. FixedScalar is the corresponding multiplier converting a
// fixed-point float/decimal into its raw integer units.
const (
	FixedPrecision = 9
	FixedScalar    = 1_000_000_000.0
)

// QuantityRaw is the raw integer representation of a fixed-point quantity
// or price, scaled by FixedScalar.
type QuantityRaw = int64

// Price is a fixed-point price value. Raw holds the scaled integer form;
// the decimal form is derived on demand rather than stored, matching the
// source representation's "one true value, many views" design.
type Price struct {
	Raw QuantityRaw
}

// NewPriceFromFloat builds a Price from a float64, rounding to FixedPrecision.
func NewPriceFromFloat(value float64) Price {
	return Price{Raw: int64(math.Round(value * FixedScalar))}
}

// NewPriceFromString parses a decimal string price (e.g. "1.00") exactly,
// avoiding the binary float rounding NewPriceFromFloat accepts.
func NewPriceFromString(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price{Raw: d.Shift(FixedPrecision).Round(0).IntPart()}, nil
}

// AsFloat64 returns the price as a float64.
func (p Price) AsFloat64() float64 {
	return float64(p.Raw) / FixedScalar
}

// AsDecimal returns the price as an exact decimal.Decimal.
func (p Price) AsDecimal() decimal.Decimal {
	return decimal.New(p.Raw, -FixedPrecision)
}

func (p Price) String() string {
	return p.AsDecimal().String()
}

// Quantity is a fixed-point size value, following the same raw-scaled
// representation as Price.
type Quantity struct {
	Raw QuantityRaw
}

// NewQuantityFromFloat builds a Quantity from a float64, rounding to
// FixedPrecision.
func NewQuantityFromFloat(value float64) Quantity {
	return Quantity{Raw: int64(math.Round(value * FixedScalar))}
}

// NewQuantityFromUint builds a Quantity representing a whole-unit integer
// size (no fractional component).
func NewQuantityFromUint(value uint64) Quantity {
	return Quantity{Raw: int64(value) * int64(FixedScalar)}
}

// ZeroQuantity returns the zero quantity; update(order) with a zero
// quantity is the book engine's signal to remove an order.
func ZeroQuantity() Quantity {
	return Quantity{Raw: 0}
}

// IsZero reports whether this quantity represents zero size.
func (q Quantity) IsZero() bool {
	return q.Raw == 0
}

// AsFloat64 returns the quantity as a float64.
func (q Quantity) AsFloat64() float64 {
	return float64(q.Raw) / FixedScalar
}

// AsDecimal returns the quantity as an exact decimal.Decimal.
func (q Quantity) AsDecimal() decimal.Decimal {
	return decimal.New(q.Raw, -FixedPrecision)
}

func (q Quantity) String() string {
	return q.AsDecimal().String()
}
