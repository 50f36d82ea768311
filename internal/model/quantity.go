package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/pkg/exception"
)

const (
	// QuantityMax is the maximum representable quantity value.
	QuantityMax float64 = 18_446_744_073.0

	// QuantityRawUndef is the sentinel raw value for an unset quantity.
	QuantityRawUndef uint64 = math.MaxUint64
)

var quantityRawMax = uint64(QuantityMax * FixedScalar)

// Quantity is an unsigned fixed-point size. The raw value is held at
// FixedPrecision scale; Precision bounds display and arithmetic.
type Quantity struct {
	Raw       uint64
	Precision uint8
}

// NewQuantity validates value and precision and returns a quantity.
// Quantities are non-negative.
func NewQuantity(value float64, precision uint8) (Quantity, error) {
	if err := CheckFixedPrecision(precision); err != nil {
		return Quantity{}, err
	}
	if value < 0 || value > QuantityMax || math.IsNaN(value) {
		return Quantity{}, errors.Wrapf(exception.ErrValueOutOfRange,
			"quantity %v outside [0, %v]", value, QuantityMax)
	}
	return Quantity{Raw: F64ToFixedU64(value, precision), Precision: precision}, nil
}

// MustQuantity returns a quantity or panics. Intended for literals known valid.
func MustQuantity(value float64, precision uint8) Quantity {
	q, err := NewQuantity(value, precision)
	if err != nil {
		panic(err)
	}
	return q
}

// QuantityFromRaw builds a quantity from a raw value without range checks.
// Panics if precision exceeds FixedPrecision.
func QuantityFromRaw(raw uint64, precision uint8) Quantity {
	if err := CheckFixedPrecision(precision); err != nil {
		panic(err)
	}
	return Quantity{Raw: raw, Precision: precision}
}

// ZeroQuantity returns a zero quantity with the given precision.
func ZeroQuantity(precision uint8) Quantity {
	return QuantityFromRaw(0, precision)
}

// MaxQuantity returns the maximum representable quantity with the given precision.
func MaxQuantity(precision uint8) Quantity {
	return QuantityFromRaw(quantityRawMax, precision)
}

// ParseQuantity parses integer, decimal, or thousand-underscored forms.
// Precision is inferred from the count of fractional digits.
func ParseQuantity(s string) (Quantity, error) {
	shifted, precision, err := parseFixed(s)
	if err != nil {
		return Quantity{}, err
	}
	if shifted.Sign() < 0 || !shifted.IsUint64() {
		return Quantity{}, errors.Wrapf(exception.ErrValueOutOfRange, "parsed quantity %s", s)
	}
	raw := shifted.Uint64()
	if raw > quantityRawMax {
		return Quantity{}, errors.Wrapf(exception.ErrValueOutOfRange, "parsed quantity %s", s)
	}
	return Quantity{Raw: raw, Precision: precision}, nil
}

// IsUndefined reports whether the quantity is the unset sentinel.
func (q Quantity) IsUndefined() bool {
	return q.Raw == QuantityRawUndef
}

// IsZero reports whether the quantity is exactly zero.
func (q Quantity) IsZero() bool {
	return q.Raw == 0
}

// IsPositive reports whether the quantity is defined and greater than zero.
func (q Quantity) IsPositive() bool {
	return q.Raw != QuantityRawUndef && q.Raw > 0
}

// AsF64 returns the quantity as a float.
func (q Quantity) AsF64() float64 {
	return FixedU64ToF64(q.Raw)
}

// AsDecimal returns the quantity as an exact decimal.
func (q Quantity) AsDecimal() decimal.Decimal {
	return decimal.New(int64(q.Raw), -int32(FixedPrecision)).Truncate(int32(q.Precision))
}

// Equal compares raw values; precision does not participate in equality.
func (q Quantity) Equal(other Quantity) bool {
	return q.Raw == other.Raw
}

// Less compares raw values.
func (q Quantity) Less(other Quantity) bool {
	return q.Raw < other.Raw
}

// Add returns q + other. Panics on overflow or precision narrowing.
func (q Quantity) Add(other Quantity) Quantity {
	checkPrecisionGE(q.Precision, other.Precision)
	sum := q.Raw + other.Raw
	if sum < q.Raw {
		panic(fmt.Sprintf("overflow adding Quantity: %d + %d", q.Raw, other.Raw))
	}
	return Quantity{Raw: sum, Precision: q.Precision}
}

// Sub returns q - other. Panics on underflow or precision narrowing.
func (q Quantity) Sub(other Quantity) Quantity {
	checkPrecisionGE(q.Precision, other.Precision)
	if other.Raw > q.Raw {
		panic(fmt.Sprintf("underflow subtracting Quantity: %d - %d", q.Raw, other.Raw))
	}
	return Quantity{Raw: q.Raw - other.Raw, Precision: q.Precision}
}

// SaturatingSub returns q - other, floored at zero.
func (q Quantity) SaturatingSub(other Quantity) Quantity {
	if other.Raw >= q.Raw {
		return Quantity{Raw: 0, Precision: q.Precision}
	}
	return Quantity{Raw: q.Raw - other.Raw, Precision: q.Precision}
}

// String renders the canonical form, zero-padded to Precision digits.
func (q Quantity) String() string {
	return string(appendFixedUnsigned(nil, q.Raw, q.Precision, false))
}

// ToFormattedString renders with thousand separators.
func (q Quantity) ToFormattedString() string {
	return insertThousandSeparators(q.String())
}

// MarshalJSON emits the canonical string form.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.String() + `"`), nil
}

// UnmarshalJSON parses the canonical string form.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
