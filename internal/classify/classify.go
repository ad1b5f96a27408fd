// Package classify assigns a coarse event category to a raw notification
// before any locale grammar runs.
package classify

import (
	"regexp"
	"strings"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/grammar"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// currencyToken matches a currency mark or unit in any supported locale.
var currencyToken = regexp.MustCompile(`원|₩|\$|£|€|¥|円|元|(?i:\b(?:USD|CAD|AUD|EUR|GBP|KRW|JPY|CNY|RMB)\b)`)

// cashWords are withdrawal-like words that no locale lexicon lists as a
// direction keyword.
var cashWords = []string{"ATM", "현금", "cash", "現金", "现金", "取现", "Bargeld", "Geldautomat", "espèces"}

var folder = cases.Fold()

// Classifier evaluates the category rules against the keyword sets of a
// fixed list of locales. A Classifier holds no mutable state.
type Classifier struct {
	lexicons []*grammar.Lexicon
	cash     []string
}

// New builds a classifier over the given locales, or every declared locale
// when none are given. Locales without a lexicon are skipped.
func New(locales ...domain.Locale) *Classifier {
	if len(locales) == 0 {
		locales = domain.Locales
	}
	c := &Classifier{}
	for _, l := range locales {
		if lex, ok := grammar.LexiconFor(l); ok {
			c.lexicons = append(c.lexicons, lex)
		}
	}
	for _, w := range cashWords {
		c.cash = append(c.cash, folder.String(w))
	}
	return c
}

var std = New()

// Classify assigns a category using the classifier over every locale.
func Classify(text string) domain.Category {
	return std.Classify(text)
}

// Classify applies the rules in order; the first that holds wins:
//
//  1. card issuer, approval or cancellation word, currency token and
//     running-total word, all from one locale: card transaction
//  2. deposit word: income transaction
//  3. withdrawal, transfer or cash word: income transaction
//  4. balance word: balance snapshot
//  5. otherwise unknown
func (c *Classifier) Classify(text string) domain.Category {
	text = width.Fold.String(text)
	if strings.TrimSpace(text) == "" {
		return domain.CategoryUnknown
	}

	hasCurrency := currencyToken.MatchString(text)
	if hasCurrency && c.any(text, func(l *grammar.Lexicon) bool {
		return l.ContainsAny(text, l.CardIssuers) &&
			(l.ContainsAny(text, l.Approve) || l.ContainsAny(text, l.Cancel)) &&
			l.ContainsAny(text, l.Totals)
	}) {
		return domain.CategoryCardTransaction
	}

	if c.any(text, func(l *grammar.Lexicon) bool { return l.ContainsAny(text, l.Deposits) }) {
		return domain.CategoryIncomeTransaction
	}

	if c.any(text, func(l *grammar.Lexicon) bool {
		return l.ContainsAny(text, l.Debits) || l.ContainsAny(text, l.Auto)
	}) || c.cashWord(text) {
		return domain.CategoryIncomeTransaction
	}

	if c.any(text, func(l *grammar.Lexicon) bool { return l.ContainsAny(text, l.Balance) }) {
		return domain.CategoryBalanceSnapshot
	}

	return domain.CategoryUnknown
}

func (c *Classifier) any(text string, rule func(*grammar.Lexicon) bool) bool {
	for _, l := range c.lexicons {
		if rule(l) {
			return true
		}
	}
	return false
}

func (c *Classifier) cashWord(text string) bool {
	folded := folder.String(text)
	for _, w := range c.cash {
		if strings.Contains(folded, w) {
			return true
		}
	}
	return false
}
