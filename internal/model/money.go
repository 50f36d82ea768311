package model

// Currency is an ISO-style currency code with a display precision.
type Currency struct {
	Code      string
	Precision uint8
}

// USD and USDT cover the default test fixtures; venues define the rest.
var (
	USD  = Currency{Code: "USD", Precision: 2}
	USDT = Currency{Code: "USDT", Precision: 8}
)

// Money is a fixed-point amount in a single currency.
type Money struct {
	Raw      int64
	Currency Currency
}

// NewMoney builds an amount from a float in the currency's precision.
func NewMoney(value float64, currency Currency) Money {
	return Money{Raw: F64ToFixedI64(value, currency.Precision), Currency: currency}
}

// MoneyFromRaw builds an amount from a raw fixed-point value.
func MoneyFromRaw(raw int64, currency Currency) Money {
	return Money{Raw: raw, Currency: currency}
}

// Add returns m + other. Panics if the currencies differ.
func (m Money) Add(other Money) Money {
	if m.Currency.Code != other.Currency.Code {
		panic("cannot add Money of different currencies: " + m.Currency.Code + " + " + other.Currency.Code)
	}
	raw, ok := addI64(m.Raw, other.Raw)
	if !ok {
		panic("overflow adding Money")
	}
	return Money{Raw: raw, Currency: m.Currency}
}

// AsF64 returns the amount as a float.
func (m Money) AsF64() float64 {
	return FixedI64ToF64(m.Raw)
}

// String renders e.g. "12.50 USD".
func (m Money) String() string {
	return string(appendFixedString(nil, m.Raw, m.Currency.Precision)) + " " + m.Currency.Code
}
