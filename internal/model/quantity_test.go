package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity(t *testing.T) {
	q, err := NewQuantity(10.5, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_500_000_000), q.Raw)
	assert.Equal(t, "10.5", q.String())
}

func TestNewQuantityBounds(t *testing.T) {
	if _, err := NewQuantity(-1, 0); err == nil {
		t.Fatal("negative quantity should fail")
	}
	if _, err := NewQuantity(QuantityMax, 0); err != nil {
		t.Fatalf("max quantity should be valid: %v", err)
	}
	if _, err := NewQuantity(QuantityMax+1, 0); err == nil {
		t.Fatal("quantity above max should fail")
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("1_000.250")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_250_000_000), q.Raw)
	assert.Equal(t, uint8(3), q.Precision)

	if _, err := ParseQuantity("-5"); err == nil {
		t.Fatal("negative input should fail")
	}
}

func TestQuantityStringRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "10.5", "0.000000001", "123456.789"} {
		q, err := ParseQuantity(s)
		require.NoError(t, err)
		back, err := ParseQuantity(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, back, "round trip %q", s)
	}
}

func TestQuantityMaxRoundTrip(t *testing.T) {
	q := MaxQuantity(0)
	back, err := ParseQuantity(q.String())
	require.NoError(t, err)
	assert.Equal(t, q, back)

	data, err := q.MarshalJSON()
	require.NoError(t, err)
	var fromJSON Quantity
	require.NoError(t, fromJSON.UnmarshalJSON(data))
	assert.Equal(t, q, fromJSON)
}

func TestQuantityAddSub(t *testing.T) {
	a := MustQuantity(10, 0)
	b := MustQuantity(4, 0)
	assert.Equal(t, "14", a.Add(b).String())
	assert.Equal(t, "6", a.Sub(b).String())
}

func TestQuantitySubUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("underflow should panic")
		}
	}()
	MustQuantity(1, 0).Sub(MustQuantity(2, 0))
}

func TestQuantitySaturatingSub(t *testing.T) {
	a := MustQuantity(1, 0)
	b := MustQuantity(2, 0)
	assert.True(t, a.SaturatingSub(b).IsZero())
	assert.Equal(t, "1", b.SaturatingSub(a).String())
}

func TestQuantityPredicates(t *testing.T) {
	assert.True(t, ZeroQuantity(2).IsZero())
	assert.True(t, MustQuantity(1, 0).IsPositive())
	assert.False(t, ZeroQuantity(0).IsPositive())
}

func TestQuantityJSON(t *testing.T) {
	q := MustQuantity(2.500, 3)
	data, err := q.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2.500"`, string(data))

	var back Quantity
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, q, back)
}
