package i18n_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cureconnect/portal/pkg/i18n"
)

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n        float64
		decimals int
		lang     string
		want     string
	}{
		{1234.5, 2, "en", "1,234.50"},
		{7300000, 0, "en", "7,300,000"},
		{1234.5, 2, "bn", "1,234.50"},
		{1234.5, 2, "ar", "1٬234٫50"},
		{999, 0, "en", "999"},
		{-1234567.891, 1, "en", "-1,234,567.9"},
		{-0.001, 2, "en", "0.00"},
		{1000, 0, "xx", "1,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, i18n.FormatNumber(tt.n, tt.decimals, tt.lang))
	}
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "₹ 250,000.00", i18n.FormatCurrency(250000, "INR", "en"))
	assert.Equal(t, "$ 5,000.00", i18n.FormatCurrency(5000, "usd", "bn"))
	assert.Equal(t, "€ 10.50", i18n.FormatCurrency(10.5, "EUR", "en"))
	assert.Equal(t, "£ 1.00", i18n.FormatCurrency(1, "GBP", "en"))
	assert.Equal(t, "1٬000٫00 ₹", i18n.FormatCurrency(1000, "INR", "ar"))
	assert.Equal(t, "AED 3.00", i18n.FormatCurrency(3, "AED", "en"))
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "March 5, 2025", i18n.FormatDate("2025-03-05", "en"))
	assert.Equal(t, "5 March, 2025", i18n.FormatDate("2025-03-05", "bn"))
	assert.Equal(t, "5 March 2025", i18n.FormatDate("2025-03-05 10:30:00", "ar"))
	assert.Equal(t, "not a date", i18n.FormatDate("not a date", "en"))
	assert.Equal(t, "July 1, 2024", i18n.FormatTime(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), "fr"))
}
