package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input   string
		want    Locale
		wantErr bool
	}{
		{"KR", LocaleKR, false},
		{" us ", LocaleUS, false},
		{"de", LocaleDE, false},
		{"", "", false},
		{"XX", "", true},
		{"korea", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocale(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocale(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedLocale) {
				t.Errorf("ParseLocale(%q) error = %v, want ErrUnsupportedLocale", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLocale(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocalesDeclarationOrder(t *testing.T) {
	want := []Locale{LocaleKR, LocaleUS, LocaleJP, LocaleCN, LocaleGB, LocaleDE, LocaleFR, LocaleCA, LocaleAU}
	if len(Locales) != len(want) {
		t.Fatalf("len(Locales) = %d, want %d", len(Locales), len(want))
	}
	for i := range want {
		if Locales[i] != want[i] {
			t.Errorf("Locales[%d] = %s, want %s", i, Locales[i], want[i])
		}
		if Locales[i].DisplayName() == "" {
			t.Errorf("%s has no display name", Locales[i])
		}
	}
}

func TestCandidateValid(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want bool
	}{
		{"card approved", &CardTransaction{Direction: CardApproved, Amount: 100}, true},
		{"card free-text direction", &CardTransaction{Direction: "승인", Amount: 100}, false},
		{"card negative amount", &CardTransaction{Direction: CardCancelled, Amount: -1}, false},
		{"income deposit", &IncomeTransaction{Direction: Deposit, Kind: KindBank, Amount: 1}, true},
		{"income missing kind", &IncomeTransaction{Direction: Deposit, Amount: 1}, false},
		{"balance", &BalanceSnapshot{Balance: 0}, true},
		{"negative balance", &BalanceSnapshot{Balance: -5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEventNetAmount(t *testing.T) {
	now := time.Date(2025, 10, 13, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cand     Candidate
		wantNet  int64
		wantFlow Flow
	}{
		{
			name:     "card approval is an outflow",
			cand:     &CardTransaction{Issuer: "신한카드", Direction: CardApproved, Amount: 98700},
			wantNet:  98700,
			wantFlow: FlowOut,
		},
		{
			name:     "card cancellation is negative",
			cand:     &CardTransaction{Issuer: "신한카드", Direction: CardCancelled, Amount: 98700},
			wantNet:  -98700,
			wantFlow: FlowIn,
		},
		{
			name:     "deposit is an inflow",
			cand:     &IncomeTransaction{Direction: Deposit, Kind: KindSalary, Amount: 2500000},
			wantNet:  2500000,
			wantFlow: FlowIn,
		},
		{
			name:     "withdrawal is an outflow",
			cand:     &IncomeTransaction{Direction: Withdrawal, Kind: KindAutoTransfer, Amount: 50000},
			wantNet:  50000,
			wantFlow: FlowOut,
		},
		{
			name:     "balance has no net",
			cand:     &BalanceSnapshot{Balance: 1000},
			wantNet:  0,
			wantFlow: FlowNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &Extraction{Candidate: tt.cand, Confidence: 0.9, SourceLocale: LocaleKR, Strategy: StrategyGrammar}
			ev := NewEvent(ext, "raw", "fp", now)
			if ev.NetAmount != tt.wantNet {
				t.Errorf("NetAmount = %d, want %d", ev.NetAmount, tt.wantNet)
			}
			if ev.Flow != tt.wantFlow {
				t.Errorf("Flow = %s, want %s", ev.Flow, tt.wantFlow)
			}
			if ev.Amount < 0 {
				t.Errorf("Amount = %d, want >= 0", ev.Amount)
			}
			if ev.EventID == "" {
				t.Error("expected EventID to be generated")
			}
			if ev.Category != tt.cand.Category() {
				t.Errorf("Category = %s, want %s", ev.Category, tt.cand.Category())
			}
		})
	}
}
