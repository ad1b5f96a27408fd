package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

var (
	// ErrMalformedAmount is returned when an amount literal cannot be normalized.
	ErrMalformedAmount = errors.New("malformed amount")

	// ErrMalformedDate is returned when a date or time literal cannot be normalized.
	ErrMalformedDate = errors.New("malformed date")
)

// NumberFormat describes how a locale writes money amounts.
type NumberFormat struct {
	// Group holds the thousands separators accepted for the locale.
	Group []string

	// Decimal is the decimal separator.
	Decimal string

	// Exponent is the number of minor-unit digits of the currency.
	Exponent int32

	// Currency is the ISO 4217 code of the local currency.
	Currency string

	// Tokens are currency symbols and units stripped before parsing.
	Tokens []string
}

var numberFormats = map[domain.Locale]NumberFormat{
	domain.LocaleKR: {Group: []string{","}, Decimal: ".", Exponent: 0, Currency: "KRW", Tokens: []string{"원", "₩", "KRW"}},
	domain.LocaleUS: {Group: []string{","}, Decimal: ".", Exponent: 2, Currency: "USD", Tokens: []string{"US$", "USD", "$"}},
	domain.LocaleJP: {Group: []string{","}, Decimal: ".", Exponent: 0, Currency: "JPY", Tokens: []string{"円", "¥", "JPY"}},
	domain.LocaleCN: {Group: []string{","}, Decimal: ".", Exponent: 2, Currency: "CNY", Tokens: []string{"人民币", "元", "¥", "CNY", "RMB"}},
	domain.LocaleGB: {Group: []string{","}, Decimal: ".", Exponent: 2, Currency: "GBP", Tokens: []string{"£", "GBP"}},
	domain.LocaleDE: {Group: []string{"."}, Decimal: ",", Exponent: 2, Currency: "EUR", Tokens: []string{"€", "EUR"}},
	domain.LocaleFR: {Group: []string{" ", "\u00a0", "\u202f", "."}, Decimal: ",", Exponent: 2, Currency: "EUR", Tokens: []string{"€", "EUR"}},
	domain.LocaleCA: {Group: []string{","}, Decimal: ".", Exponent: 2, Currency: "CAD", Tokens: []string{"CA$", "C$", "CAD", "$"}},
	domain.LocaleAU: {Group: []string{","}, Decimal: ".", Exponent: 2, Currency: "AUD", Tokens: []string{"AU$", "A$", "AUD", "$"}},
}

func init() {
	// Longer tokens first so "US$" is removed before "$".
	for l, f := range numberFormats {
		sort.SliceStable(f.Tokens, func(i, j int) bool {
			return len(f.Tokens[i]) > len(f.Tokens[j])
		})
		numberFormats[l] = f
	}
}

var amountLiteral = regexp.MustCompile(`^\d{1,18}(?:\.\d+)?$`)

// FormatFor returns the number format of a locale.
func FormatFor(locale domain.Locale) (NumberFormat, bool) {
	f, ok := numberFormats[locale]
	return f, ok
}

// CurrencyFor returns the ISO currency code of a locale, or "" if unknown.
func CurrencyFor(locale domain.Locale) string {
	return numberFormats[locale].Currency
}

// ParseAmount converts a locale-formatted amount such as "98,700원" or
// "$1,234.56" into a non-negative integer of minor currency units.
// Negative literals are rejected: direction is carried structurally.
func ParseAmount(raw string, locale domain.Locale) (int64, error) {
	f, ok := numberFormats[locale]
	if !ok {
		return 0, fmt.Errorf("ParseAmount: %s: %w", locale, domain.ErrUnsupportedLocale)
	}

	s := strings.TrimSpace(width.Narrow.String(raw))
	for _, tok := range f.Tokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, fmt.Errorf("ParseAmount: empty literal %q: %w", raw, ErrMalformedAmount)
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "−") || strings.HasPrefix(s, "(") {
		return 0, fmt.Errorf("ParseAmount: negative literal %q: %w", raw, ErrMalformedAmount)
	}

	for _, g := range f.Group {
		s = strings.ReplaceAll(s, g, "")
	}
	if f.Decimal != "." {
		s = strings.Replace(s, f.Decimal, ".", 1)
	}

	if !amountLiteral.MatchString(s) {
		return 0, fmt.Errorf("ParseAmount: non-digit residue in %q: %w", raw, ErrMalformedAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("ParseAmount: %q: %v: %w", raw, err, ErrMalformedAmount)
	}

	minor := d.Shift(f.Exponent)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("ParseAmount: %q has more than %d fraction digits: %w", raw, f.Exponent, ErrMalformedAmount)
	}

	return minor.IntPart(), nil
}

// MajorUnits converts minor units back to a decimal amount in the locale's currency.
func MajorUnits(minor int64, locale domain.Locale) decimal.Decimal {
	return decimal.New(minor, -numberFormats[locale].Exponent)
}

// FormatAmount renders minor units with the locale's currency code, e.g. "45.67 USD".
func FormatAmount(minor int64, locale domain.Locale) string {
	f, ok := numberFormats[locale]
	if !ok {
		return fmt.Sprintf("%d", minor)
	}
	return MajorUnits(minor, locale).StringFixed(f.Exponent) + " " + f.Currency
}
