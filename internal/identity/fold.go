package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText lower-cases and strips combining marks so "José" and "Jose" agree.
func foldText(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(folded)
}

// compact keeps only the runes accepted by keep.
func compact(value string, keep func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// collapseSpace replaces whitespace runs with one space and trims the ends.
func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Slug renders value as lower-case words joined by hyphens.
func Slug(value string) string {
	folded := foldText(value)
	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		if isAlnum(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		if r == '\'' || r == '’' {
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// SlugTokens splits the slug form of value into its hyphen-separated words.
func SlugTokens(value string) []string {
	slug := Slug(value)
	if slug == "" {
		return nil
	}
	return strings.Split(slug, "-")
}

// fallback returns value in canonical casing for inputs that compact to nothing.
func fallback(raw string) string {
	if trimmed := strings.ToLower(collapseSpace(raw)); trimmed != "" {
		return trimmed
	}
	return strings.ToLower(raw)
}
