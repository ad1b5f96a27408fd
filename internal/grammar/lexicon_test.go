package grammar

import (
	"testing"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

func TestCleanMerchant(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"가톨릭대병원", "가톨릭대병원"},
		{"  ㈜이마트  ", "이마트"},
		{"주식회사 쿠팡", "쿠팡"},
		{"(주)GS25", "GS25"},
		{"WHOLE   FOODS.", "WHOLE FOODS"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := CleanMerchant(tt.raw); got != tt.want {
				t.Errorf("CleanMerchant(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLexicon_Directions(t *testing.T) {
	tests := []struct {
		locale   domain.Locale
		word     string
		card     domain.CardDirection
		cardOK   bool
		income   domain.IncomeDirection
		incomeOK bool
	}{
		{domain.LocaleKR, "승인", domain.CardApproved, true, "", false},
		{domain.LocaleKR, "취소", domain.CardCancelled, true, "", false},
		{domain.LocaleKR, "입금", "", false, domain.Deposit, true},
		{domain.LocaleUS, "APPROVED", domain.CardApproved, true, "", false},
		{domain.LocaleUS, "Withdrawn", "", false, domain.Withdrawal, true},
		{domain.LocaleGB, "Paid In", "", false, domain.Deposit, true},
		{domain.LocaleDE, "STORNIERT", domain.CardCancelled, true, "", false},
		{domain.LocaleFR, "Virement reçu", "", false, domain.Deposit, true},
		{domain.LocaleCN, "撤销", domain.CardCancelled, true, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.locale)+"/"+tt.word, func(t *testing.T) {
			lex, ok := LexiconFor(tt.locale)
			if !ok {
				t.Fatalf("no lexicon for %s", tt.locale)
			}
			card, cardOK := lex.CardDirection(tt.word)
			if card != tt.card || cardOK != tt.cardOK {
				t.Errorf("CardDirection = %s/%v, want %s/%v", card, cardOK, tt.card, tt.cardOK)
			}
			income, incomeOK := lex.IncomeDirection(tt.word)
			if income != tt.income || incomeOK != tt.incomeOK {
				t.Errorf("IncomeDirection = %s/%v, want %s/%v", income, incomeOK, tt.income, tt.incomeOK)
			}
		})
	}
}

func TestLexicon_Index(t *testing.T) {
	us, _ := LexiconFor(domain.LocaleUS)
	if got := us.Index("Your DIRECT DEPOSIT arrived", "direct deposit"); got != 5 {
		t.Errorf("folded Index = %d, want 5", got)
	}

	kr, _ := LexiconFor(domain.LocaleKR)
	if got := kr.Index("신한은행 잔액", "잔액"); got != len("신한은행 ") {
		t.Errorf("Index = %d", got)
	}

	i, word := kr.IndexAny("신한은행 입금", kr.Institutions)
	if i != 0 || word != "신한은행" {
		t.Errorf("IndexAny = %d %q, want longest match at 0", i, word)
	}
}

func TestLexicon_Inference(t *testing.T) {
	kr, _ := LexiconFor(domain.LocaleKR)

	descriptions := map[string]string{
		"급여 입금":     "급여",
		"상여금 지급":    "보너스",
		"배당금 입금":    "투자수익",
		"알 수 없는 입금": "입금",
		"ATM 출금":    "출금",
		"알 수 없음":    "기타수입",
	}
	for text, want := range descriptions {
		if got := kr.InferDescription(text); got != want {
			t.Errorf("InferDescription(%q) = %q, want %q", text, got, want)
		}
	}

	if got := kr.InferTransferType("자동이체 통신요금"); got != "통신비" {
		t.Errorf("InferTransferType = %q", got)
	}
	if got := kr.InferTransferType("자동이체"); got != "기타" {
		t.Errorf("InferTransferType default = %q", got)
	}
}

func TestInstitutionDisplayName(t *testing.T) {
	tests := []struct {
		locale domain.Locale
		raw    string
		want   string
	}{
		{domain.LocaleKR, "신한", "신한은행"},
		{domain.LocaleKR, "토스뱅크", "토스뱅크"},
		{domain.LocaleUS, "chase", "JPMorgan Chase"},
		{domain.Locale("XX"), "Any", "Any"},
	}

	for _, tt := range tests {
		if got := InstitutionDisplayName(tt.locale, tt.raw); got != tt.want {
			t.Errorf("InstitutionDisplayName(%s, %q) = %q, want %q", tt.locale, tt.raw, got, tt.want)
		}
	}
}
