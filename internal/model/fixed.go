package model

import (
	"math"

	"github.com/yanun0323/errors"

	"main/pkg/exception"
)

const (
	// FixedPrecision is the maximum number of decimal places representable
	// by a fixed-point value. All raw values are stored at this scale.
	FixedPrecision uint8 = 9

	// FixedScalar maps a raw value to its real number: value = raw / FixedScalar.
	FixedScalar float64 = 1_000_000_000.0

	fixedPow10 int64 = 1_000_000_000
)

// CheckFixedPrecision returns an error if precision exceeds FixedPrecision.
func CheckFixedPrecision(precision uint8) error {
	if precision > FixedPrecision {
		return errors.Wrapf(exception.ErrPrecisionExceeded, "max: %d, was: %d", FixedPrecision, precision)
	}
	return nil
}

// F64ToFixedI64 converts a float to a raw fixed-point integer rounded to
// the given precision. Panics if precision exceeds FixedPrecision.
func F64ToFixedI64(value float64, precision uint8) int64 {
	if err := CheckFixedPrecision(precision); err != nil {
		panic(err)
	}
	pow1 := math.Pow10(int(precision))
	pow2 := pow10i64(FixedPrecision - precision)
	rounded := int64(math.Round(value * pow1))
	return rounded * pow2
}

// F64ToFixedU64 converts a non-negative float to a raw fixed-point integer
// rounded to the given precision. Panics if precision exceeds FixedPrecision.
func F64ToFixedU64(value float64, precision uint8) uint64 {
	if err := CheckFixedPrecision(precision); err != nil {
		panic(err)
	}
	pow1 := math.Pow10(int(precision))
	pow2 := uint64(pow10i64(FixedPrecision - precision))
	rounded := uint64(math.Round(value * pow1))
	return rounded * pow2
}

// FixedI64ToF64 converts a raw fixed-point integer back to a float.
func FixedI64ToF64(value int64) float64 {
	return float64(value) / FixedScalar
}

// FixedU64ToF64 converts a raw fixed-point integer back to a float.
func FixedU64ToF64(value uint64) float64 {
	return float64(value) / FixedScalar
}

func pow10i64(n uint8) int64 {
	p := int64(1)
	for i := uint8(0); i < n; i++ {
		p *= 10
	}
	return p
}

// appendFixedString renders a raw value held at FixedPrecision scale with
// exactly `precision` digits after the separator. The raw value is always a
// multiple of 10^(FixedPrecision-precision) by construction, so truncation
// drops only zeros.
func appendFixedString(buf []byte, raw int64, precision uint8) []byte {
	neg := raw < 0
	u := uint64(raw)
	if neg {
		u = uint64(-raw)
	}
	return appendFixedUnsigned(buf, u, precision, neg)
}

func appendFixedUnsigned(buf []byte, raw uint64, precision uint8, neg bool) []byte {
	if neg {
		buf = append(buf, '-')
	}

	scalar := uint64(fixedPow10)
	intPart := raw / scalar
	fracPart := raw % scalar

	buf = appendUint(buf, intPart)
	if precision == 0 {
		return buf
	}

	buf = append(buf, '.')
	var digits [9]byte
	for i := 8; i >= 0; i-- {
		digits[i] = byte('0' + fracPart%10)
		fracPart /= 10
	}
	return append(buf, digits[:precision]...)
}

func appendUint(buf []byte, v uint64) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(buf, tmp[i:]...)
}

// insertThousandSeparators rewrites the integer part of a canonical value
// string with '_' grouping, e.g. "1234567.89" -> "1_234_567.89". The result
// stays parseable by ParsePrice and ParseQuantity.
func insertThousandSeparators(s string) string {
	start := 0
	if len(s) > 0 && s[0] == '-' {
		start = 1
	}
	end := len(s)
	for i := start; i < len(s); i++ {
		if s[i] == '.' {
			end = i
			break
		}
	}
	digits := end - start
	if digits <= 3 {
		return s
	}

	var buf []byte
	buf = append(buf, s[:start]...)
	lead := digits % 3
	if lead == 0 {
		lead = 3
	}
	buf = append(buf, s[start:start+lead]...)
	for i := start + lead; i < end; i += 3 {
		buf = append(buf, '_')
		buf = append(buf, s[i:i+3]...)
	}
	return string(append(buf, s[end:]...))
}
