package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrice(t *testing.T) {
	p, err := NewPrice(100.25, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(100_250_000_000), p.Raw)
	assert.Equal(t, uint8(2), p.Precision)
	assert.Equal(t, "100.25", p.String())
}

func TestNewPriceBounds(t *testing.T) {
	if _, err := NewPrice(PriceMax, 0); err != nil {
		t.Fatalf("max price should be valid: %v", err)
	}
	if _, err := NewPrice(PriceMin, 0); err != nil {
		t.Fatalf("min price should be valid: %v", err)
	}
	if _, err := NewPrice(PriceMax+1, 0); err == nil {
		t.Fatal("price above max should fail")
	}
	if _, err := NewPrice(PriceMin-1, 0); err == nil {
		t.Fatal("price below min should fail")
	}
	if _, err := NewPrice(1.0, FixedPrecision+1); err == nil {
		t.Fatal("precision above maximum should fail")
	}
}

func TestParsePrice(t *testing.T) {
	for _, tc := range []struct {
		in        string
		raw       int64
		precision uint8
	}{
		{"100", 100_000_000_000, 0},
		{"100.25", 100_250_000_000, 2},
		{"-3.5", -3_500_000_000, 1},
		{"1_000.50", 1_000_500_000_000, 2},
		{"0.000000001", 1, 9},
	} {
		p, err := ParsePrice(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if p.Raw != tc.raw || p.Precision != tc.precision {
			t.Fatalf("parse %q: got raw=%d precision=%d, want raw=%d precision=%d",
				tc.in, p.Raw, p.Precision, tc.raw, tc.precision)
		}
	}

	if _, err := ParsePrice("0.0000000001"); err == nil {
		t.Fatal("ten fractional digits should fail")
	}
	if _, err := ParsePrice("abc"); err == nil {
		t.Fatal("non-numeric input should fail")
	}
}

func TestPriceStringRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "100.25", "-42.123456789", "9.1", "1000"} {
		p, err := ParsePrice(s)
		require.NoError(t, err)
		back, err := ParsePrice(p.String())
		require.NoError(t, err)
		assert.Equal(t, p.Raw, back.Raw, "round trip %q", s)
		assert.Equal(t, p.Precision, back.Precision, "round trip %q", s)
	}
}

func TestPriceStringPadding(t *testing.T) {
	p := MustPrice(1.5, 4)
	if got := p.String(); got != "1.5000" {
		t.Fatalf("expected zero-padded string, got %q", got)
	}
	if got := MustPrice(-0.25, 2).String(); got != "-0.25" {
		t.Fatalf("expected -0.25, got %q", got)
	}
}

func TestPriceAddSub(t *testing.T) {
	a := MustPrice(100.25, 2)
	b := MustPrice(0.75, 2)
	assert.Equal(t, "101.00", a.Add(b).String())
	assert.Equal(t, "99.50", a.Sub(b).String())
}

func TestPriceAddPrecisionNarrowingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("adding a finer price into a coarser one should panic")
		}
	}()
	MustPrice(100.0, 1).Add(MustPrice(0.25, 2))
}

func TestPriceAddOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("overflow should panic")
		}
	}()
	MaxPrice(0).Add(MustPrice(1, 0))
}

func TestPriceUndefined(t *testing.T) {
	p := UndefPrice()
	assert.True(t, p.IsUndefined())
	assert.False(t, MustPrice(1, 0).IsUndefined())
}

func TestPriceAsDecimal(t *testing.T) {
	p := MustPrice(100.25, 2)
	assert.Equal(t, "100.25", p.AsDecimal().String())
}

func TestPriceJSON(t *testing.T) {
	p := MustPrice(100.25, 2)
	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"100.25"`, string(data))

	var back Price
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, p, back)
}

func TestPriceFormatted(t *testing.T) {
	p := MustPrice(1234567.89, 2)
	assert.Equal(t, "1_234_567.89", p.ToFormattedString())
}
