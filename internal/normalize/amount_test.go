package normalize

import (
	"errors"
	"testing"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		locale  domain.Locale
		want    int64
		wantErr bool
	}{
		{"kr grouped", "42,820", domain.LocaleKR, 42820, false},
		{"kr millions", "1,903,674", domain.LocaleKR, 1903674, false},
		{"kr won suffix", "98,700원", domain.LocaleKR, 98700, false},
		{"kr won sign", "₩5,000", domain.LocaleKR, 5000, false},
		{"kr malformed", "abc", domain.LocaleKR, 0, true},
		{"kr negative", "-5,000", domain.LocaleKR, 0, true},
		{"kr sub-won fraction", "100.5", domain.LocaleKR, 0, true},
		{"kr empty", "원", domain.LocaleKR, 0, true},
		{"us cents", "$1,234.56", domain.LocaleUS, 123456, false},
		{"us whole dollars", "$45", domain.LocaleUS, 4500, false},
		{"us code", "USD 12.30", domain.LocaleUS, 1230, false},
		{"us three decimals", "$1.999", domain.LocaleUS, 0, true},
		{"us parenthesised", "($12.00)", domain.LocaleUS, 0, true},
		{"jp yen", "12,800円", domain.LocaleJP, 12800, false},
		{"jp full width", "１２，８００円", domain.LocaleJP, 12800, false},
		{"cn yuan", "¥1,280.50", domain.LocaleCN, 128050, false},
		{"gb pounds", "£23.40", domain.LocaleGB, 2340, false},
		{"de euro", "1.234,56 €", domain.LocaleDE, 123456, false},
		{"de no group", "89,90 EUR", domain.LocaleDE, 8990, false},
		{"fr spaces", "1 234,56 €", domain.LocaleFR, 123456, false},
		{"fr nbsp", "1\u00a0234,56\u00a0€", domain.LocaleFR, 123456, false},
		{"ca dollars", "C$89.99", domain.LocaleCA, 8999, false},
		{"au dollars", "A$1,000.00", domain.LocaleAU, 100000, false},
		{"letters inside", "12a34", domain.LocaleUS, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.locale)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q, %s) error = %v, wantErr %v", tt.raw, tt.locale, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrMalformedAmount) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrMalformedAmount", tt.raw, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q, %s) = %d, want %d", tt.raw, tt.locale, got, tt.want)
			}
		})
	}
}

func TestParseAmount_UnsupportedLocale(t *testing.T) {
	_, err := ParseAmount("100", domain.Locale("XX"))
	if !errors.Is(err, domain.ErrUnsupportedLocale) {
		t.Errorf("expected ErrUnsupportedLocale, got %v", err)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor  int64
		locale domain.Locale
		want   string
	}{
		{98700, domain.LocaleKR, "98700 KRW"},
		{123456, domain.LocaleUS, "1234.56 USD"},
		{5, domain.LocaleDE, "0.05 EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatAmount(tt.minor, tt.locale); got != tt.want {
				t.Errorf("FormatAmount(%d, %s) = %q, want %q", tt.minor, tt.locale, got, tt.want)
			}
		})
	}
}
