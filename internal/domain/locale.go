package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLocale is returned when a locale code is not one of the declared locales.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Locale is a country/region code selecting wording, numeric format and date order.
type Locale string

const (
	LocaleKR Locale = "KR"
	LocaleUS Locale = "US"
	LocaleJP Locale = "JP"
	LocaleCN Locale = "CN"
	LocaleGB Locale = "GB"
	LocaleDE Locale = "DE"
	LocaleFR Locale = "FR"
	LocaleCA Locale = "CA"
	LocaleAU Locale = "AU"
)

// Locales lists every supported locale in declaration order.
// Arbitration ties are resolved by this order.
var Locales = []Locale{
	LocaleKR,
	LocaleUS,
	LocaleJP,
	LocaleCN,
	LocaleGB,
	LocaleDE,
	LocaleFR,
	LocaleCA,
	LocaleAU,
}

var localeNames = map[Locale]string{
	LocaleKR: "한국",
	LocaleUS: "United States",
	LocaleJP: "日本",
	LocaleCN: "中国",
	LocaleGB: "United Kingdom",
	LocaleDE: "Deutschland",
	LocaleFR: "France",
	LocaleCA: "Canada",
	LocaleAU: "Australia",
}

// ParseLocale normalizes a locale code such as "kr" or " US ".
// An empty string returns an empty Locale and no error.
func ParseLocale(s string) (Locale, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", nil
	}
	l := Locale(code)
	if !l.Valid() {
		return "", fmt.Errorf("ParseLocale: %q: %w", s, ErrUnsupportedLocale)
	}
	return l, nil
}

// Valid reports whether l is one of the declared locales.
func (l Locale) Valid() bool {
	_, ok := localeNames[l]
	return ok
}

// DisplayName returns the locale's name in its own language.
func (l Locale) DisplayName() string {
	return localeNames[l]
}

func (l Locale) String() string {
	return string(l)
}
