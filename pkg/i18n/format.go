package i18n

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type numberFormat struct {
	decimal   string
	thousands string
}

var numberFormats = map[string]numberFormat{
	"en": {decimal: ".", thousands: ","},
	"bn": {decimal: ".", thousands: ","},
	"ar": {decimal: "٫", thousands: "٬"},
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatNumber renders n rounded to decimals places with the language's
// separators. Digits stay ASCII in every language.
func FormatNumber(n float64, decimals int, lang string) string {
	nf := numberFormats[Normalize(lang)]
	if decimals < 0 {
		decimals = 0
	}

	s := strconv.FormatFloat(math.Abs(n), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if n < 0 && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(nf.thousands)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(nf.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// FormatCurrency renders amount with two decimals and the symbol for code
// (the code itself when unknown). Arabic places the symbol after the amount.
func FormatCurrency(amount float64, code, lang string) string {
	lang = Normalize(lang)
	code = strings.ToUpper(code)
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code
	}
	num := FormatNumber(amount, 2, lang)
	if Direction(lang) == RTL {
		return num + " " + symbol
	}
	return symbol + " " + num
}

var dateLayouts = map[string]string{
	"en": "January 2, 2006",
	"bn": "2 January, 2006",
	"ar": "2 January 2006",
}

var inputLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04",
	"01/02/2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// FormatDate reformats a date string for lang. Input that cannot be parsed
// is returned unchanged.
func FormatDate(date, lang string) string {
	d := strings.TrimSpace(date)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, d); err == nil {
			return FormatTime(t, lang)
		}
	}
	return date
}

// FormatTime renders t with lang's date layout.
func FormatTime(t time.Time, lang string) string {
	return t.Format(dateLayouts[Normalize(lang)])
}
