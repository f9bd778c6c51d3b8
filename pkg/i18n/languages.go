package i18n

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Default is the fallback language.
const Default = "en"

// Text directions.
const (
	LTR = "ltr"
	RTL = "rtl"
)

// Language describes one supported language.
type Language struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

var supported = []Language{
	{Code: "en", Name: "English", Direction: LTR},
	{Code: "bn", Name: "বাংলা", Direction: LTR},
	{Code: "ar", Name: "العربية", Direction: RTL},
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	return slices.Clone(supported)
}

// IsSupported reports whether code is one of the supported languages.
func IsSupported(code string) bool {
	_, ok := lookup(code)
	return ok
}

// Direction returns "rtl" or "ltr" for code; unknown codes are ltr.
func Direction(code string) string {
	if l, ok := lookup(code); ok {
		return l.Direction
	}
	return LTR
}

func lookup(code string) (Language, bool) {
	for _, l := range supported {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Normalize maps unknown codes to Default.
func Normalize(code string) string {
	if IsSupported(code) {
		return code
	}
	return Default
}

// Negotiate picks the visitor language. It returns the chosen code and whether
// the caller should persist it in the session. Precedence: a supported query
// value, a supported session value, the first supported Accept-Language entry
// by quality, then Default.
func Negotiate(query, sessionValue, acceptLanguage string) (lang string, persist bool) {
	if IsSupported(query) {
		return query, query != sessionValue
	}
	if IsSupported(sessionValue) {
		return sessionValue, false
	}
	if lang, ok := fromAcceptLanguage(acceptLanguage); ok {
		return lang, true
	}
	return Default, true
}

// maxAcceptLanguageLength bounds header parsing.
const maxAcceptLanguageLength = 4096

func fromAcceptLanguage(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return "", false
	}
	for _, tag := range tags {
		base, _ := tag.Base()
		code := strings.ToLower(base.String())
		if IsSupported(code) {
			return code, true
		}
	}
	return "", false
}
