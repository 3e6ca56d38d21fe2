// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals in memory and integer cents at rest.
package core

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of fraction digits of every amount.
	AmountScale = 2
	// MaxAmountDigits bounds the total number of significant digits.
	MaxAmountDigits = 10
)

var (
	ErrInvalidAmount   = errors.New("a valid number is required")
	ErrNegativeAmount  = errors.New("ensure this value is greater than or equal to 0")
	ErrAmountPrecision = errors.New("ensure that there are no more than 2 decimal places")
	ErrAmountTooLarge  = errors.New("ensure that there are no more than 10 digits in total")
)

// ParseAmount converts a decimal string into an exact two-digit decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. More
// than two fraction digits are rejected rather than rounded, so the stored
// value is always exactly what the caller sent.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,3")  -> 12.30, nil
//	ParseAmount("12.345") -> error
//	ParseAmount("-1")     -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	intPart := strings.TrimLeft(parts[0], "0")
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if parts[0] == "" && fracPart == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range parts[0] + fracPart {
		if !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if len(strings.TrimRight(fracPart, "0")) > AmountScale {
		return decimal.Zero, ErrAmountPrecision
	}
	if len(intPart) > MaxAmountDigits-AmountScale {
		return decimal.Zero, ErrAmountTooLarge
	}

	normalized := parts[0]
	if normalized == "" {
		normalized = "0"
	}
	if fracPart != "" {
		normalized += "." + fracPart
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(AmountScale), nil
}

// ToCents returns the amount in integer cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(AmountScale).Round(0).IntPart()
}

// FromCents builds an amount from integer cents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -AmountScale)
}

// FormatAmount renders an amount with exactly two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}
