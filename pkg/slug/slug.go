package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Letters with no canonical decomposition to an ASCII base.
var undecomposable = strings.NewReplacer(
	"ı", "i", "ß", "ss", "æ", "ae", "ø", "o", "ł", "l", "đ", "d", "œ", "oe",
)

// Generate creates a URL- and filename-safe slug. Accents are stripped, runs
// of anything other than ASCII letters and digits collapse to one hyphen.
//
// Examples:
//   - "Kadın Giyim" → "kadin-giyim"
//   - "Crème Brûlée" → "creme-brulee"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = undecomposable.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate shortens a slug to at most max bytes without leaving a trailing
// hyphen.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}
