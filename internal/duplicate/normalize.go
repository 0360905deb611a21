package duplicate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a counterparty name for comparison: accents removed,
// lower case, dots dropped ("S.A." becomes "sa") and every other
// non-alphanumeric rune treated as a separator.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == '.':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NameSimilarity is the token-overlap (Jaccard) ratio of two normalized
// names, in [0, 1]. Two empty names score 0.
func NameSimilarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(NormalizeName(name)) {
		set[tok] = true
	}
	return set
}
