package model

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/pkg/exception"
)

const (
	// PriceMax is the maximum representable price value.
	PriceMax float64 = 9_223_372_036.0

	// PriceMin is the minimum representable price value.
	PriceMin float64 = -9_223_372_036.0

	// PriceRawUndef is the sentinel raw value for an unset price.
	PriceRawUndef int64 = math.MaxInt64

	// PriceRawError is the sentinel raw value for an invalid price.
	PriceRawError int64 = math.MinInt64
)

var (
	priceRawMax = int64(PriceMax * FixedScalar)
	priceRawMin = int64(PriceMin * FixedScalar)
)

// Price is a signed fixed-point price. The raw value is held at
// FixedPrecision scale; Precision bounds display and arithmetic.
//
// Prices may be negative for some asset classes (spreads, certain futures).
type Price struct {
	Raw       int64
	Precision uint8
}

// NewPrice validates value and precision and returns a price.
func NewPrice(value float64, precision uint8) (Price, error) {
	if err := CheckFixedPrecision(precision); err != nil {
		return Price{}, err
	}
	if value < PriceMin || value > PriceMax || math.IsNaN(value) {
		return Price{}, errors.Wrapf(exception.ErrValueOutOfRange,
			"price %v outside [%v, %v]", value, PriceMin, PriceMax)
	}
	return Price{Raw: F64ToFixedI64(value, precision), Precision: precision}, nil
}

// MustPrice returns a price or panics. Intended for literals known valid.
func MustPrice(value float64, precision uint8) Price {
	p, err := NewPrice(value, precision)
	if err != nil {
		panic(err)
	}
	return p
}

// PriceFromRaw builds a price from a raw value without range checks.
// Panics if precision exceeds FixedPrecision.
func PriceFromRaw(raw int64, precision uint8) Price {
	if err := CheckFixedPrecision(precision); err != nil {
		panic(err)
	}
	return Price{Raw: raw, Precision: precision}
}

// ZeroPrice returns a zero price with the given precision.
func ZeroPrice(precision uint8) Price {
	return PriceFromRaw(0, precision)
}

// MinPrice returns the minimum representable price with the given precision.
func MinPrice(precision uint8) Price {
	return PriceFromRaw(priceRawMin, precision)
}

// MaxPrice returns the maximum representable price with the given precision.
func MaxPrice(precision uint8) Price {
	return PriceFromRaw(priceRawMax, precision)
}

// UndefPrice returns the undefined price sentinel.
func UndefPrice() Price {
	return Price{Raw: PriceRawUndef, Precision: 0}
}

// ParsePrice parses integer, decimal, or thousand-underscored forms.
// Precision is inferred from the count of fractional digits.
func ParsePrice(s string) (Price, error) {
	shifted, precision, err := parseFixed(s)
	if err != nil {
		return Price{}, err
	}
	if !shifted.IsInt64() {
		return Price{}, errors.Wrapf(exception.ErrValueOutOfRange, "parsed price %s", s)
	}
	raw := shifted.Int64()
	if raw < priceRawMin || raw > priceRawMax {
		return Price{}, errors.Wrapf(exception.ErrValueOutOfRange, "parsed price %s", s)
	}
	return Price{Raw: raw, Precision: precision}, nil
}

// parseFixed returns the raw value at FixedPrecision scale as a big integer
// so callers can range-check against their own signed or unsigned bounds.
func parseFixed(s string) (*big.Int, uint8, error) {
	clean := strings.ReplaceAll(s, "_", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return nil, 0, errors.Wrapf(exception.ErrValueUnparsable, "input %q: %v", s, err)
	}

	var precision uint8
	if d.Exponent() < 0 {
		e := -d.Exponent()
		if e > int32(FixedPrecision) {
			return nil, 0, errors.Wrapf(exception.ErrPrecisionExceeded,
				"input %q has %d fractional digits, max %d", s, e, FixedPrecision)
		}
		precision = uint8(e)
	}

	shifted := d.Shift(int32(FixedPrecision))
	if !shifted.IsInteger() {
		return nil, 0, errors.Wrapf(exception.ErrPrecisionExceeded, "input %q", s)
	}
	return shifted.BigInt(), precision, nil
}

// IsUndefined reports whether the price is the unset sentinel.
func (p Price) IsUndefined() bool {
	return p.Raw == PriceRawUndef
}

// IsZero reports whether the price is exactly zero.
func (p Price) IsZero() bool {
	return p.Raw == 0
}

// IsPositive reports whether the price is defined and greater than zero.
func (p Price) IsPositive() bool {
	return p.Raw != PriceRawUndef && p.Raw > 0
}

// AsF64 returns the price as a float.
func (p Price) AsF64() float64 {
	return FixedI64ToF64(p.Raw)
}

// AsDecimal returns the price as an exact decimal.
func (p Price) AsDecimal() decimal.Decimal {
	return decimal.New(p.Raw, -int32(FixedPrecision)).Truncate(int32(p.Precision))
}

// Equal compares raw values; precision does not participate in equality.
func (p Price) Equal(other Price) bool {
	return p.Raw == other.Raw
}

// Less compares raw values.
func (p Price) Less(other Price) bool {
	return p.Raw < other.Raw
}

// Add returns p + other. Panics on overflow or when the left-hand precision
// is lower than the right-hand precision (precision loss is forbidden).
func (p Price) Add(other Price) Price {
	checkPrecisionGE(p.Precision, other.Precision)
	raw, ok := addI64(p.Raw, other.Raw)
	if !ok {
		panic(fmt.Sprintf("overflow adding Price: %d + %d", p.Raw, other.Raw))
	}
	return Price{Raw: raw, Precision: p.Precision}
}

// Sub returns p - other. Panics on underflow or precision narrowing.
func (p Price) Sub(other Price) Price {
	checkPrecisionGE(p.Precision, other.Precision)
	raw, ok := subI64(p.Raw, other.Raw)
	if !ok {
		panic(fmt.Sprintf("underflow subtracting Price: %d - %d", p.Raw, other.Raw))
	}
	return Price{Raw: raw, Precision: p.Precision}
}

// Neg returns the negated price.
func (p Price) Neg() Price {
	return Price{Raw: -p.Raw, Precision: p.Precision}
}

// String renders the canonical form, zero-padded to Precision digits.
func (p Price) String() string {
	return string(appendFixedString(nil, p.Raw, p.Precision))
}

// ToFormattedString renders with thousand separators.
func (p Price) ToFormattedString() string {
	return insertThousandSeparators(p.String())
}

// MarshalJSON emits the canonical string form.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses the canonical string form.
func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func checkPrecisionGE(lhs, rhs uint8) {
	if lhs < rhs {
		panic(fmt.Sprintf("precision mismatch: cannot combine precision %d into precision %d (precision loss)", rhs, lhs))
	}
}

func addI64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func subI64(a, b int64) (int64, bool) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, false
	}
	return diff, true
}
