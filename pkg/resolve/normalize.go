package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer canonicalizes free text before comparison.
type Normalizer func(string) string

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLowercaseUTF8 lowercases, folds punctuation to single spaces and
// trims. Accented letters survive, so Finnish names like "Perämerentie"
// keep their identity. This is the default mode: catalog descriptions,
// override keys and incoming queries must all go through the same function.
func NormalizeLowercaseUTF8(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// NormalizeLowercaseASCII lowercases, folds punctuation and strips accents
// (e.g. Perämerentie -> peramerentie).
func NormalizeLowercaseASCII(s string) string {
	result, _, _ := transform.String(stripAccents, NormalizeLowercaseUTF8(s))
	return result
}

// NormalizeNone returns the input unchanged.
func NormalizeNone(s string) string {
	return s
}

// GetNormalizer returns the normalizer for the given mode.
// Default is lowercase_utf8.
func GetNormalizer(mode string) Normalizer {
	switch mode {
	case "lowercase_ascii":
		return NormalizeLowercaseASCII
	case "none":
		return NormalizeNone
	default:
		return NormalizeLowercaseUTF8
	}
}

// Tokens splits an already normalized string into its word set.
func Tokens(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// overlap counts tokens present in both sets.
func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
