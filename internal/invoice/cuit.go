package invoice

import (
	"strings"
	"unicode"
)

var cuitPrefixes = map[string]bool{
	"20": true, "23": true, "24": true, "25": true, "26": true,
	"27": true, "30": true, "33": true, "34": true,
}

var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// NormalizeCUIT strips separators, "20-12345678-3" becomes "20123456783".
func NormalizeCUIT(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCUIT checks length, prefix and the mod-11 check digit of an
// Argentine CUIT/CUIL.
func ValidateCUIT(raw string) error {
	cuit := NormalizeCUIT(raw)
	if len(cuit) != 11 {
		return &CUITError{Value: raw, Reason: "must have 11 digits"}
	}
	if !cuitPrefixes[cuit[:2]] {
		return &CUITError{Value: raw, Reason: "unknown prefix " + cuit[:2]}
	}

	sum := 0
	for i, w := range cuitWeights {
		sum += int(cuit[i]-'0') * w
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		check = 9
	}
	if int(cuit[10]-'0') != check {
		return &CUITError{Value: raw, Reason: "check digit mismatch"}
	}
	return nil
}
