package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/normalize"
)

// Family groups patterns by the surface form they describe.
type Family string

const (
	FamilyCard         Family = "card"
	FamilyBank         Family = "bank"
	FamilySalary       Family = "salary"
	FamilyAutoTransfer Family = "auto_transfer"
	FamilyBalance      Family = "balance"
)

// Category returns the event category produced by patterns of the family.
func (f Family) Category() domain.Category {
	switch f {
	case FamilyCard:
		return domain.CategoryCardTransaction
	case FamilyBank, FamilySalary, FamilyAutoTransfer:
		return domain.CategoryIncomeTransaction
	case FamilyBalance:
		return domain.CategoryBalanceSnapshot
	}
	return domain.CategoryUnknown
}

var errNoMatch = errors.New("pattern did not match")

// Pattern is one structural matcher for one surface form.
//
// Field values are read from named groups: issuer, card, holder, dir, amount,
// plan, date, time, merchant, total for cards; bank, account, dir, desc, memo,
// amount, balance, date, time for bank, salary, auto-transfer and balance forms.
// Missing optional groups fall back to lexicon defaults.
type Pattern struct {
	Name    string
	Family  Family
	Weight  float64
	Expr    *regexp.Regexp
	Example string
}

func newPattern(name string, family Family, weight float64, expr, example string) *Pattern {
	return &Pattern{
		Name:    name,
		Family:  family,
		Weight:  weight,
		Expr:    regexp.MustCompile(expr),
		Example: example,
	}
}

// Matches reports whether the pattern structurally matches text.
func (p *Pattern) Matches(text string) bool {
	return p.Expr.MatchString(text)
}

// Apply matches text and coerces the captured groups into a candidate.
// A structural match whose fields fail coercion returns an error so the
// caller can move on to the next pattern.
func (p *Pattern) Apply(text string, lex *Lexicon, now time.Time) (domain.Candidate, error) {
	values := p.Expr.FindStringSubmatch(text)
	if values == nil {
		return nil, errNoMatch
	}
	m := match{names: p.Expr.SubexpNames(), values: values}

	var (
		c   domain.Candidate
		err error
	)
	switch p.Family {
	case FamilyCard:
		c, err = buildCard(m, text, lex, now)
	case FamilyBank:
		c, err = buildIncome(m, text, lex, now, domain.KindBank)
	case FamilySalary:
		c, err = buildIncome(m, text, lex, now, domain.KindSalary)
	case FamilyAutoTransfer:
		c, err = buildIncome(m, text, lex, now, domain.KindAutoTransfer)
	case FamilyBalance:
		c, err = buildBalance(m, text, lex, now)
	default:
		err = fmt.Errorf("unknown family %q", p.Family)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%s: candidate violates invariants", p.Name)
	}
	return c, nil
}

type match struct {
	names  []string
	values []string
}

func (m match) get(name string) string {
	for i, n := range m.names {
		if n == name && i < len(m.values) {
			return strings.TrimSpace(m.values[i])
		}
	}
	return ""
}

func occurredAt(m match, lex *Lexicon, now time.Time) time.Time {
	date := m.get("date")
	if date == "" {
		return now
	}
	return normalize.DateTimeOr(date, m.get("time"), lex.Locale, now)
}

func buildCard(m match, text string, lex *Lexicon, now time.Time) (domain.Candidate, error) {
	amount, err := normalize.ParseAmount(m.get("amount"), lex.Locale)
	if err != nil {
		return nil, err
	}

	direction := domain.CardApproved
	if word := m.get("dir"); word != "" {
		d, ok := lex.CardDirection(word)
		if !ok {
			return nil, fmt.Errorf("card direction %q not recognised", word)
		}
		direction = d
	}

	var total int64
	if raw := m.get("total"); raw != "" {
		total, err = normalize.ParseAmount(raw, lex.Locale)
		if err != nil {
			return nil, err
		}
	}

	issuer := m.get("issuer")
	if issuer == "" {
		issuer = lex.FindInstitution(text, lex.CardIssuers)
	}

	return &domain.CardTransaction{
		Issuer:          issuer,
		MaskedCardID:    orDefault(m.get("card"), DefaultCardID),
		Direction:       direction,
		MaskedHolder:    orDefault(m.get("holder"), DefaultHolder),
		Amount:          amount,
		Currency:        normalize.CurrencyFor(lex.Locale),
		InstallmentPlan: orDefault(m.get("plan"), lex.DefaultInstallment),
		Merchant:        CleanMerchant(m.get("merchant")),
		OccurredAt:      occurredAt(m, lex, now),
		RunningTotal:    total,
	}, nil
}

func buildIncome(m match, text string, lex *Lexicon, now time.Time, kind domain.IncomeKind) (domain.Candidate, error) {
	amount, err := normalize.ParseAmount(m.get("amount"), lex.Locale)
	if err != nil {
		return nil, err
	}

	var direction domain.IncomeDirection
	if word := m.get("dir"); word != "" {
		d, ok := lex.IncomeDirection(word)
		if !ok {
			return nil, fmt.Errorf("income direction %q not recognised", word)
		}
		direction = d
	} else {
		switch kind {
		case domain.KindSalary:
			direction = domain.Deposit
		case domain.KindAutoTransfer:
			direction = domain.Withdrawal
		default:
			return nil, errors.New("bank form without direction")
		}
	}

	var balance int64
	if raw := m.get("balance"); raw != "" {
		balance, err = normalize.ParseAmount(raw, lex.Locale)
		if err != nil {
			return nil, err
		}
	}

	institution := m.get("bank")
	if institution == "" {
		institution = lex.FindInstitution(text, lex.Institutions)
	}

	desc, memo := m.get("desc"), m.get("memo")
	tx := &domain.IncomeTransaction{
		Institution:     institution,
		MaskedAccountID: m.get("account"),
		Direction:       direction,
		Kind:            kind,
		Amount:          amount,
		Currency:        normalize.CurrencyFor(lex.Locale),
		BalanceAfter:    balance,
		OccurredAt:      occurredAt(m, lex, now),
	}

	switch kind {
	case domain.KindAutoTransfer:
		tx.Description = orDefault(memo, desc)
		tx.TransferType = lex.InferTransferType(strings.TrimSpace(memo + " " + text))
	case domain.KindSalary:
		tx.Description = orDefault(desc, lex.InferDescription(text))
	default:
		tx.Description = orDefault(desc, lex.InferDescription(text))
		if lex.IsSalary(desc) {
			tx.Kind = domain.KindSalary
		}
	}

	return tx, nil
}

func buildBalance(m match, text string, lex *Lexicon, now time.Time) (domain.Candidate, error) {
	balance, err := normalize.ParseAmount(m.get("balance"), lex.Locale)
	if err != nil {
		return nil, err
	}

	institution := m.get("bank")
	if institution == "" {
		institution = lex.FindInstitution(text, lex.Institutions)
	}

	return &domain.BalanceSnapshot{
		Institution:     institution,
		MaskedAccountID: m.get("account"),
		Balance:         balance,
		Currency:        normalize.CurrencyFor(lex.Locale),
		AsOf:            occurredAt(m, lex, now),
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
