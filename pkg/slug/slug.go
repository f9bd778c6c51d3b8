package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	separators = regexp.MustCompile(`[\s-]+`)
)

// Option adjusts Make.
type Option func(*options)

type options struct {
	maxLength int
}

// MaxLength caps the slug length in bytes, cutting on a separator when possible.
func MaxLength(n int) Option {
	return func(o *options) { o.maxLength = n }
}

// Make lowercases s, folds diacritics, drops everything outside [a-z0-9],
// whitespace and '-', collapses runs of separators into one '-' and trims
// leading and trailing dashes.
func Make(s string, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s = strings.ToLower(fold(s))
	s = disallowed.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if o.maxLength > 0 && len(s) > o.maxLength {
		cut := s[:o.maxLength]
		if s[o.maxLength] != '-' {
			if i := strings.LastIndexByte(cut, '-'); i > 0 {
				cut = cut[:i]
			}
		}
		s = cut
		s = strings.Trim(s, "-")
	}
	return s
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
