// Package core holds the domain records and the money/date primitives shared
// by the aggregation engine, the storage layer and the HTTP handlers.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in whole rupiah. The currency has no minor unit, so the
// value is the display value; keep arithmetic on Money to avoid float drift.
type Money int64

// ParseAmount converts a user-entered decimal string to whole rupiah.
//
// It accepts both dot (12500.75) and comma (12500,75) decimal separators and
// rounds the fractional part half-up. Signs are rejected: amounts are always
// non-negative and direction is carried by the transaction type.
//
// Examples:
//
//	ParseAmount("25000")    -> 25000, nil
//	ParseAmount("25000,4")  -> 25000, nil
//	ParseAmount("25000.5")  -> 25001, nil
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Half-up rounding on the first fractional digit.
	if len(fracPart) > 0 && fracPart[0] >= '5' {
		v++
	}
	return Money(v), nil
}

// Format renders the amount as "Rp1.000.000" with dot thousand separators.
func (m Money) Format() string {
	neg := m < 0
	if neg {
		m = -m
	}
	digits := strconv.FormatInt(int64(m), 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("Rp")
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}
