package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of transaction dates.
const DateLayout = "2006-01-02"

// AmountPlaces is the fixed number of decimal digits carried by every amount.
const AmountPlaces = 2

// MaxAmount is the largest amount a single debit or payment may carry.
var MaxAmount = decimal.RequireFromString("99999999.99")

// MaxIntegerDigits is the number of digits before the point in MaxAmount.
const MaxIntegerDigits = 8

// MinYear is the earliest year a transaction date may fall in.
const MinYear = 1900

// ParseAmount parses a decimal string such as "45.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// IntegerDigits returns the number of digits before the decimal point of d,
// zero or negative for fractions. It never rescales d.
func IntegerDigits(d decimal.Decimal) int {
	if d.IsZero() {
		return 0
	}
	return d.NumDigits() + int(d.Exponent())
}

// HasValidPrecision reports whether d carries no more than AmountPlaces decimals.
// Rounding work is bounded by the number of digits d was written with.
func HasValidPrecision(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp >= -AmountPlaces {
		return true
	}
	// A nonzero value with n digits is a multiple of 10^k only when n > k.
	if d.NumDigits() <= -exp-AmountPlaces {
		return d.IsZero()
	}
	return d.Equal(d.Round(AmountPlaces))
}

// ToCents converts an amount to its integer storage form.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(AmountPlaces).Round(0).IntPart()
}

// FromCents converts stored integer cents back to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -AmountPlaces)
}

// FormatAmount renders d with exactly AmountPlaces decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}

// ParseDate parses a calendar date in DateLayout. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
