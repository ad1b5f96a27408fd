// Package heuristic is the low-confidence fallback used when no grammar
// pattern of an engine extracts a message. It works from loose signals: a
// known institution name, amount-shaped tokens, the first date and a
// direction keyword.
package heuristic

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/grammar"
	"github.com/dvloznov/notification-ledger/internal/normalize"
)

const (
	BaseConfidence = 0.5
	DateBonus      = 0.05
	DirectionBonus = 0.05

	// PatternName is recorded on heuristic extractions in place of a
	// grammar pattern name.
	PatternName = "heuristic"
)

var (
	cardRef      = regexp.MustCompile(`(?i)\((\d{3,4})\)|\*(\d{4})|ending\s+(?:in\s+)?(\d{4})|尾号(\d{4})`)
	parenthetics = regexp.MustCompile(`\([^)]*\)|（[^）]*）`)

	descriptionPreps = []string{"from ", "to ", "ref ", "von ", "de ", "来自"}
)

type label int

const (
	unlabelled label = iota
	runningTotal
	balance
)

type token struct {
	start, end int
	value      int64
	label      label
}

// Extractor extracts candidates for one locale without structural patterns.
type Extractor struct {
	lex *grammar.Lexicon
}

// New returns an extractor over a locale vocabulary.
func New(lex *grammar.Lexicon) *Extractor {
	return &Extractor{lex: lex}
}

// Extract declines (returns false) when no institution keyword or no usable
// amount is present.
func (x *Extractor) Extract(text string, category domain.Category, now time.Time) (*domain.Extraction, bool) {
	tokens := x.amountTokens(text)
	if len(tokens) == 0 {
		return nil, false
	}

	occurredAt, dated := x.firstDate(text, now)

	var (
		c        domain.Candidate
		directed bool
	)
	switch category {
	case domain.CategoryCardTransaction:
		c, directed = x.card(text, tokens, occurredAt)
	case domain.CategoryIncomeTransaction:
		c, directed = x.income(text, tokens, occurredAt)
	case domain.CategoryBalanceSnapshot:
		c = x.balance(text, tokens, occurredAt)
	}
	if c == nil || !c.Valid() {
		return nil, false
	}

	confidence := BaseConfidence
	if dated {
		confidence += DateBonus
	}
	if directed {
		confidence += DirectionBonus
	}

	return &domain.Extraction{
		Candidate:    c,
		Confidence:   math.Round(confidence*100) / 100,
		SourceLocale: x.lex.Locale,
		Strategy:     domain.StrategyHeuristic,
		Pattern:      PatternName,
	}, true
}

func (x *Extractor) card(text string, tokens []token, at time.Time) (domain.Candidate, bool) {
	issuer := x.lex.FindInstitution(text, x.lex.CardIssuers)
	if issuer == "" {
		issuer = x.lex.FindInstitution(text, x.lex.Institutions)
	}
	if issuer == "" {
		return nil, false
	}

	direction, directed := domain.CardApproved, false
	if i, _ := x.lex.IndexAny(text, x.lex.Cancel); i >= 0 {
		direction, directed = domain.CardCancelled, true
	} else if i, _ := x.lex.IndexAny(text, x.lex.Approve); i >= 0 {
		directed = true
	}

	amount, ok := x.pickAmount(text, tokens, x.keywords(x.lex.Approve, x.lex.Cancel))
	if !ok {
		return nil, false
	}

	card := &domain.CardTransaction{
		Issuer:          issuer,
		MaskedCardID:    grammar.DefaultCardID,
		Direction:       direction,
		MaskedHolder:    grammar.DefaultHolder,
		Amount:          amount.value,
		Currency:        normalize.CurrencyFor(x.lex.Locale),
		InstallmentPlan: x.lex.DefaultInstallment,
		Merchant:        x.merchant(text, amount, tokens),
		OccurredAt:      at,
		RunningTotal:    firstLabelled(tokens, runningTotal, balance),
	}
	if ref := firstGroup(cardRef, text); ref != "" {
		card.MaskedCardID = ref
	}
	if x.lex.InstallmentToken != nil {
		if plan := x.lex.InstallmentToken.FindString(text); plan != "" {
			card.InstallmentPlan = plan
		}
	}
	return card, directed
}

func (x *Extractor) income(text string, tokens []token, at time.Time) (domain.Candidate, bool) {
	institution := x.lex.FindInstitution(text, x.lex.Institutions)
	if institution == "" {
		return nil, false
	}

	kind := domain.KindBank
	switch {
	case x.lex.ContainsAny(text, x.lex.Auto):
		kind = domain.KindAutoTransfer
	case x.lex.ContainsAny(text, x.lex.Salary):
		kind = domain.KindSalary
	}

	direction, directed := domain.Deposit, false
	dep, _ := x.lex.IndexAny(text, x.lex.Deposits)
	deb, _ := x.lex.IndexAny(text, x.lex.Debits)
	switch {
	case dep >= 0 && (deb < 0 || dep <= deb):
		directed = true
	case deb >= 0:
		direction, directed = domain.Withdrawal, true
	case kind == domain.KindAutoTransfer:
		direction = domain.Withdrawal
	}

	amount, ok := x.pickAmount(text, tokens, x.keywords(x.lex.Deposits, x.lex.Debits, x.lex.Salary, x.lex.Auto))
	if !ok {
		return nil, false
	}

	tx := &domain.IncomeTransaction{
		Institution:     institution,
		MaskedAccountID: x.account(text),
		Direction:       direction,
		Kind:            kind,
		Description:     x.description(text, amount),
		Amount:          amount.value,
		Currency:        normalize.CurrencyFor(x.lex.Locale),
		BalanceAfter:    firstLabelled(tokens, balance),
		OccurredAt:      at,
	}
	if kind == domain.KindAutoTransfer {
		tx.TransferType = x.lex.InferTransferType(text)
	}
	return tx, directed
}

func (x *Extractor) balance(text string, tokens []token, at time.Time) domain.Candidate {
	institution := x.lex.FindInstitution(text, x.lex.Institutions)
	if institution == "" {
		return nil
	}

	var value int64
	found := false
	for _, t := range tokens {
		if t.label == balance {
			value, found = t.value, true
			break
		}
	}
	if !found {
		t, ok := x.adjacent(text, tokens, x.keywords(x.lex.Balance))
		if !ok {
			return nil
		}
		value = t.value
	}

	return &domain.BalanceSnapshot{
		Institution:     institution,
		MaskedAccountID: x.account(text),
		Balance:         value,
		Currency:        normalize.CurrencyFor(x.lex.Locale),
		AsOf:            at,
	}
}

// pickAmount prefers the first amount directly following a direction
// keyword. Otherwise it falls back to the largest unlabelled amount, on the
// assumption that the transaction value dominates the message.
func (x *Extractor) pickAmount(text string, tokens []token, keywords []string) (token, bool) {
	if t, ok := x.adjacent(text, tokens, keywords); ok {
		return t, true
	}

	pool := make([]token, 0, len(tokens))
	for _, t := range tokens {
		if t.label == unlabelled {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		pool = tokens
	}

	best, found := token{}, false
	for _, t := range pool {
		if !found || t.value > best.value {
			best, found = t, true
		}
	}
	return best, found
}

// adjacent finds the first unlabelled amount separated from a keyword by
// at most one word and no digits. Keywords are considered in text order.
func (x *Extractor) adjacent(text string, tokens []token, keywords []string) (token, bool) {
	type hit struct{ start, end int }
	var hits []hit
	for _, k := range keywords {
		if i := x.lex.Index(text, k); i >= 0 {
			hits = append(hits, hit{i, i + len(k)})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	for _, h := range hits {
		for _, t := range tokens {
			if t.start < h.end {
				continue
			}
			gap := text[h.end:t.start]
			if t.label == unlabelled && !strings.ContainsFunc(gap, unicode.IsDigit) && len(strings.Fields(gap)) <= 1 {
				return t, true
			}
			break
		}
	}
	return token{}, false
}

func (x *Extractor) keywords(sets ...[]string) []string {
	var out []string
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// merchant takes the text between the amount and the next date, with
// parenthesised notes removed. When that is empty it looks after the date,
// up to the running-total keyword or the next amount.
func (x *Extractor) merchant(text string, amount token, tokens []token) string {
	rest := text[amount.end:]
	dateLoc := x.lex.DateToken.FindStringIndex(rest)

	if m := x.cleanSegment(untilDate(rest, dateLoc)); m != "" {
		return m
	}
	if dateLoc == nil {
		return ""
	}

	after := rest[dateLoc[1]:]
	offset := amount.end + dateLoc[1]
	for _, t := range tokens {
		if t.start >= offset {
			after = text[offset:t.start]
			break
		}
	}
	return x.cleanSegment(after)
}

// description takes the text between the amount and the next date. Only
// when that holds no words is the description inferred from keywords.
func (x *Extractor) description(text string, amount token) string {
	rest := text[amount.end:]
	d := x.cleanSegment(untilDate(rest, x.lex.DateToken.FindStringIndex(rest)))
	for _, prep := range descriptionPreps {
		if x.lex.Index(d, prep) == 0 {
			d = d[len(prep):]
			break
		}
	}
	d = strings.TrimFunc(d, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSpace(r) })
	if !strings.ContainsFunc(d, unicode.IsLetter) {
		return x.lex.InferDescription(text)
	}
	return d
}

func untilDate(rest string, dateLoc []int) string {
	if dateLoc == nil {
		return rest
	}
	return rest[:dateLoc[0]]
}

func (x *Extractor) cleanSegment(s string) string {
	s = parenthetics.ReplaceAllString(s, " ")
	cut := len(s)
	for _, words := range [][]string{x.lex.Totals, x.lex.Balance, x.lex.Institutions} {
		if i, _ := x.lex.IndexAny(s, words); i >= 0 && i < cut {
			cut = i
		}
	}
	s = s[:cut]
	for _, prep := range []string{"at ", "chez ", "bei ", "商户:", "商户："} {
		if x.lex.Index(strings.TrimSpace(s), prep) == 0 {
			s = strings.TrimSpace(s)[len(prep):]
		}
	}
	return grammar.CleanMerchant(s)
}

func (x *Extractor) account(text string) string {
	if x.lex.AccountToken == nil {
		return ""
	}
	return firstGroup(x.lex.AccountToken, text)
}

func (x *Extractor) firstDate(text string, now time.Time) (time.Time, bool) {
	m := x.lex.DateToken.FindStringSubmatch(text)
	if m == nil {
		return now, false
	}
	var timePart string
	if len(m) > 2 {
		timePart = m[2]
	}
	t, err := normalize.ParseDateTime(m[1], timePart, x.lex.Locale, now)
	if err != nil {
		return now, false
	}
	return t, true
}

func (x *Extractor) amountTokens(text string) []token {
	var out []token
	for _, loc := range x.lex.AmountToken.FindAllStringIndex(text, -1) {
		v, err := normalize.ParseAmount(text[loc[0]:loc[1]], x.lex.Locale)
		if err != nil {
			continue
		}
		out = append(out, token{start: loc[0], end: loc[1], value: v, label: x.labelFor(text[:loc[0]])})
	}
	return out
}

func (x *Extractor) labelFor(prefix string) label {
	prefix = strings.TrimRight(prefix, " \t:：")
	switch {
	case x.hasSuffix(prefix, x.lex.Balance):
		return balance
	case x.hasSuffix(prefix, x.lex.Totals):
		return runningTotal
	}
	return unlabelled
}

func (x *Extractor) hasSuffix(s string, words []string) bool {
	for _, w := range words {
		if len(w) > len(s) {
			continue
		}
		tail := s[len(s)-len(w):]
		if tail == w || (x.lex.Fold && strings.EqualFold(tail, w)) {
			return true
		}
	}
	return false
}

// firstLabelled returns the first token carrying the earliest label in
// order. Card alerts in some locales report the running total as a balance.
func firstLabelled(tokens []token, order ...label) int64 {
	for _, l := range order {
		for _, t := range tokens {
			if t.label == l {
				return t.value
			}
		}
	}
	return 0
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	for _, g := range m[min(1, len(m)):] {
		if g != "" {
			return g
		}
	}
	return ""
}
