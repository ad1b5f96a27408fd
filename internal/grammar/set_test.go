package grammar

import (
	"testing"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

var testNow = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

func TestPatternExamples(t *testing.T) {
	for _, locale := range domain.Locales {
		set, err := For(locale)
		if err != nil {
			t.Fatalf("For(%s): %v", locale, err)
		}
		for _, category := range domain.Categories {
			for _, p := range set.Patterns(category) {
				p, category := p, category
				t.Run(p.Name, func(t *testing.T) {
					if p.Example == "" {
						t.Fatal("pattern has no example")
					}
					if p.Family.Category() != category {
						t.Fatalf("family %s listed under %s", p.Family, category)
					}
					if _, err := p.Apply(p.Example, set.Lexicon(), testNow); err != nil {
						t.Fatalf("Apply(example): %v", err)
					}

					ext, ok := set.Extract(p.Example, category, testNow)
					if !ok {
						t.Fatal("Extract(example) failed")
					}
					if ext.Pattern != p.Name {
						t.Errorf("example claimed by %s", ext.Pattern)
					}
					if ext.Confidence != p.Weight {
						t.Errorf("confidence = %v, want %v", ext.Confidence, p.Weight)
					}
					if ext.SourceLocale != locale {
						t.Errorf("source locale = %s, want %s", ext.SourceLocale, locale)
					}
					if ext.Strategy != domain.StrategyGrammar {
						t.Errorf("strategy = %s", ext.Strategy)
					}
					if ext.Category() != category {
						t.Errorf("category = %s, want %s", ext.Category(), category)
					}
					if got := set.Confidence(p.Example); got < p.Weight {
						t.Errorf("Confidence(example) = %v, want >= %v", got, p.Weight)
					}
				})
			}
		}
	}
}

func TestPatternWeightsAndOrder(t *testing.T) {
	allowed := map[float64]bool{0.9: true, 0.8: true, 0.7: true}
	seen := map[string]bool{}
	for _, locale := range domain.Locales {
		set, _ := For(locale)
		for _, category := range domain.Categories {
			patterns := set.Patterns(category)
			if len(patterns) == 0 {
				t.Errorf("%s/%s has no patterns", locale, category)
			}
			for i, p := range patterns {
				if !allowed[p.Weight] {
					t.Errorf("%s weight %v not a static tier", p.Name, p.Weight)
				}
				if seen[p.Name] {
					t.Errorf("duplicate pattern name %s", p.Name)
				}
				seen[p.Name] = true
				if i > 0 && p.Weight > patterns[i-1].Weight {
					t.Errorf("%s (%v) listed after weaker %s (%v)", p.Name, p.Weight, patterns[i-1].Name, patterns[i-1].Weight)
				}
			}
		}
	}
}

func TestExtract_KoreanCard(t *testing.T) {
	set, _ := For(domain.LocaleKR)
	text := "신한카드(1054)승인 신*진 98,700원(일시불)10/13 15:48 가톨릭대병원 누적1,960,854원"

	ext, ok := set.Extract(text, domain.CategoryCardTransaction, testNow)
	if !ok {
		t.Fatal("expected extraction")
	}
	card, ok := ext.Candidate.(*domain.CardTransaction)
	if !ok {
		t.Fatalf("candidate = %T", ext.Candidate)
	}

	want := domain.CardTransaction{
		Issuer:          "신한카드",
		MaskedCardID:    "1054",
		Direction:       domain.CardApproved,
		MaskedHolder:    "신*진",
		Amount:          98700,
		Currency:        "KRW",
		InstallmentPlan: "일시불",
		Merchant:        "가톨릭대병원",
		OccurredAt:      time.Date(2025, 10, 13, 15, 48, 0, 0, time.UTC),
		RunningTotal:    1960854,
	}
	if *card != want {
		t.Errorf("card = %+v\nwant %+v", *card, want)
	}
	if ext.Confidence < 0.7 {
		t.Errorf("confidence = %v", ext.Confidence)
	}
}

func TestExtract_KoreanSalary(t *testing.T) {
	set, _ := For(domain.LocaleKR)
	text := "신한 10/11 21:54 100-***-159993 입금 급여 2,500,000 잔액 3,265,147 급여"

	ext, ok := set.Extract(text, domain.CategoryIncomeTransaction, testNow)
	if !ok {
		t.Fatal("expected extraction")
	}
	tx := ext.Candidate.(*domain.IncomeTransaction)

	if tx.Institution != "신한" || tx.MaskedAccountID != "100-***-159993" {
		t.Errorf("institution/account = %q/%q", tx.Institution, tx.MaskedAccountID)
	}
	if tx.Direction != domain.Deposit || tx.Kind != domain.KindSalary {
		t.Errorf("direction/kind = %s/%s", tx.Direction, tx.Kind)
	}
	if tx.Description != "급여" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.Amount != 2500000 || tx.BalanceAfter != 3265147 {
		t.Errorf("amount/balance = %d/%d", tx.Amount, tx.BalanceAfter)
	}
	if !tx.OccurredAt.Equal(time.Date(2025, 10, 11, 21, 54, 0, 0, time.UTC)) {
		t.Errorf("occurredAt = %v", tx.OccurredAt)
	}
}

func TestExtract_Defaults(t *testing.T) {
	tests := []struct {
		name   string
		locale domain.Locale
		text   string
		check  func(t *testing.T, c domain.Candidate)
	}{
		{
			name:   "korean simple card gets default card, holder and plan",
			locale: domain.LocaleKR,
			text:   "현대카드 승인 50,000원 (주)이마트 10/13 18:20",
			check: func(t *testing.T, c domain.Candidate) {
				card := c.(*domain.CardTransaction)
				if card.MaskedCardID != DefaultCardID || card.MaskedHolder != DefaultHolder {
					t.Errorf("card/holder = %q/%q", card.MaskedCardID, card.MaskedHolder)
				}
				if card.InstallmentPlan != "일시불" {
					t.Errorf("plan = %q", card.InstallmentPlan)
				}
				if card.Merchant != "이마트" {
					t.Errorf("merchant = %q", card.Merchant)
				}
			},
		},
		{
			name:   "auto transfer infers transfer type",
			locale: domain.LocaleKR,
			text:   "[하나은행] 자동이체 관리비 89,000원",
			check: func(t *testing.T, c domain.Candidate) {
				tx := c.(*domain.IncomeTransaction)
				if tx.Kind != domain.KindAutoTransfer || tx.Direction != domain.Withdrawal {
					t.Errorf("kind/direction = %s/%s", tx.Kind, tx.Direction)
				}
				if tx.TransferType != "관리비" || tx.Description != "관리비" {
					t.Errorf("transfer type/description = %q/%q", tx.TransferType, tx.Description)
				}
			},
		},
		{
			name:   "us alert finds issuer in text",
			locale: domain.LocaleUS,
			text:   "Capital One alert. DECLINED: $300.00 at BEST BUY on 10/12 at 1:30 PM",
			check: func(t *testing.T, c domain.Candidate) {
				card := c.(*domain.CardTransaction)
				if card.Issuer != "Capital One" || card.Direction != domain.CardCancelled {
					t.Errorf("issuer/direction = %q/%s", card.Issuer, card.Direction)
				}
				if card.Amount != 30000 || card.Currency != "USD" {
					t.Errorf("amount = %d %s", card.Amount, card.Currency)
				}
				if card.OccurredAt.Hour() != 13 {
					t.Errorf("occurredAt = %v", card.OccurredAt)
				}
			},
		},
		{
			name:   "german day-month date",
			locale: domain.LocaleDE,
			text:   "Commerzbank: Kontostand am 03.10. 2.345,67 €",
			check: func(t *testing.T, c domain.Candidate) {
				b := c.(*domain.BalanceSnapshot)
				if b.Balance != 234567 || b.AsOf.Month() != time.October || b.AsOf.Day() != 3 {
					t.Errorf("balance = %d as of %v", b.Balance, b.AsOf)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := For(tt.locale)
			if err != nil {
				t.Fatal(err)
			}
			var ext *domain.Extraction
			for _, category := range domain.Categories {
				if e, ok := set.Extract(tt.text, category, testNow); ok {
					ext = e
					break
				}
			}
			if ext == nil {
				t.Fatal("no category extracted")
			}
			tt.check(t, ext.Candidate)
		})
	}
}

func TestExtract_CoercionFailureFallsThrough(t *testing.T) {
	set := &Set{
		locale:  domain.LocaleKR,
		lexicon: krLexicon,
		lists: map[domain.Category][]*Pattern{
			domain.CategoryBalanceSnapshot: {
				newPattern("loose", FamilyBalance, 0.9, `잔액\s+(?P<balance>\S+)`, ""),
				newPattern("strict", FamilyBalance, 0.7, `잔액\s+\S+\s+(?P<balance>\d[\d,]*)원`, ""),
			},
		},
	}

	ext, ok := set.Extract("잔액 확인불가 12,000원", domain.CategoryBalanceSnapshot, testNow)
	if !ok {
		t.Fatal("expected the second pattern to extract")
	}
	if ext.Pattern != "strict" || ext.Confidence != 0.7 {
		t.Errorf("pattern/confidence = %s/%v", ext.Pattern, ext.Confidence)
	}
	if got := ext.Candidate.(*domain.BalanceSnapshot).Balance; got != 12000 {
		t.Errorf("balance = %d", got)
	}
}

func TestConfidence_Gate(t *testing.T) {
	for _, locale := range domain.Locales {
		set, _ := For(locale)
		if got := set.Confidence("hello world"); got != 0 {
			t.Errorf("%s: Confidence(hello world) = %v", locale, got)
		}
	}

	kr, _ := For(domain.LocaleKR)
	if got := kr.Confidence("Chase Card ending in 1234: Approved $45.67 at SHOP on 10/13 at 3:45 PM"); got != 0 {
		t.Errorf("KR confidence for english text = %v", got)
	}
	if got := kr.Confidence("카드 승인 알림입니다"); got != 0 {
		t.Errorf("gate without structure = %v, want 0", got)
	}
}

func TestFor_UnsupportedLocale(t *testing.T) {
	if _, err := For("XX"); err == nil {
		t.Fatal("expected error")
	}
}
