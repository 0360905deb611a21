// Package currency parses and formats Argentine peso amounts.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string is not a recognizable amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Parse reads an amount written the way it appears on invoices and
// spreadsheets: "$1.234,56", "1234,56", "1,234.56", "1234.56", "1.500",
// "-$ 80,00", "(80,00)" or "1.234,56 ARS". When both separators appear the
// rightmost one is the decimal separator. A lone comma is always the
// decimal separator ("1,500" is 1.5). A lone dot is a thousands separator
// only between a 1-3 digit group without a leading zero and exactly three
// digits ("1.500" is 1500, "0.125" and "1234.567" keep the decimal point).
// An empty string is zero.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.NewReplacer(" ", "", "\u00a0", "", "$", "", "ARS", "", "ars", "").Replace(cleaned)
	if strings.HasPrefix(cleaned, "-") {
		negative = !negative
		cleaned = cleaned[1:]
	}

	normalized, err := normalizeSeparators(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q (cleaned: %s)", ErrInvalidAmount, s, normalized)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// MustParse is Parse for literals; it panics on error.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func normalizeSeparators(s string) (string, error) {
	if s == "" {
		return "", ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return "", ErrInvalidAmount
		}
	}

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1), checkSingle(s[comma+1:])
		}
		return strings.ReplaceAll(s, ",", ""), checkSingle(s[dot+1:])
	case comma >= 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1), nil
		}
		return strings.ReplaceAll(s, ",", ""), nil
	case dot >= 0:
		if strings.Count(s, ".") == 1 && !thousandsGroup(s[:dot], s[dot+1:]) {
			return s, nil
		}
		return strings.ReplaceAll(s, ".", ""), nil
	default:
		return s, nil
	}
}

// thousandsGroup reports whether "intPart.fraction" reads as a grouped
// integer: a 1-3 digit leading group without a leading zero, then exactly
// three digits.
func thousandsGroup(intPart, fraction string) bool {
	return len(fraction) == 3 && len(intPart) >= 1 && len(intPart) <= 3 && intPart[0] != '0'
}

// checkSingle rejects a fractional part that still holds a separator.
func checkSingle(fraction string) error {
	if strings.ContainsAny(fraction, ".,") {
		return ErrInvalidAmount
	}
	return nil
}

// Format renders an amount as "$1.234,56", or "-$1.234,56" when negative.
func Format(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
