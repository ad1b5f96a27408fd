package grammar

import (
	"fmt"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

type definition struct {
	lexicon *Lexicon
	card    []*Pattern
	income  []*Pattern
	balance []*Pattern
}

var definitions = map[domain.Locale]*definition{
	domain.LocaleKR: krDefinition,
	domain.LocaleUS: usDefinition,
	domain.LocaleJP: jpDefinition,
	domain.LocaleCN: cnDefinition,
	domain.LocaleGB: gbDefinition,
	domain.LocaleDE: deDefinition,
	domain.LocaleFR: frDefinition,
	domain.LocaleCA: caDefinition,
	domain.LocaleAU: auDefinition,
}

var lexicons = func() map[domain.Locale]*Lexicon {
	m := make(map[domain.Locale]*Lexicon, len(definitions))
	for locale, def := range definitions {
		m[locale] = def.lexicon
	}
	return m
}()

// Set is the ordered pattern list of one locale, per category. Within a
// category patterns are tried in declaration order and the first one that
// both matches and coerces wins.
type Set struct {
	locale  domain.Locale
	lexicon *Lexicon
	lists   map[domain.Category][]*Pattern
}

// For returns the grammar set of a locale.
func For(locale domain.Locale) (*Set, error) {
	def, ok := definitions[locale]
	if !ok {
		return nil, fmt.Errorf("grammar.For: %q: %w", locale, domain.ErrUnsupportedLocale)
	}
	return &Set{
		locale:  locale,
		lexicon: def.lexicon,
		lists: map[domain.Category][]*Pattern{
			domain.CategoryCardTransaction:   def.card,
			domain.CategoryIncomeTransaction: def.income,
			domain.CategoryBalanceSnapshot:   def.balance,
		},
	}, nil
}

func (s *Set) Locale() domain.Locale { return s.locale }

func (s *Set) Lexicon() *Lexicon { return s.lexicon }

// Patterns returns the ordered patterns of a category.
func (s *Set) Patterns(category domain.Category) []*Pattern {
	list := s.lists[category]
	out := make([]*Pattern, len(list))
	copy(out, list)
	return out
}

// Extract runs the category's patterns in order and returns the first
// successful extraction, with the pattern's static weight as confidence.
func (s *Set) Extract(text string, category domain.Category, now time.Time) (*domain.Extraction, bool) {
	for _, p := range s.lists[category] {
		if !p.Matches(text) {
			continue
		}
		c, err := p.Apply(text, s.lexicon, now)
		if err != nil {
			continue
		}
		return &domain.Extraction{
			Candidate:    c,
			Confidence:   p.Weight,
			SourceLocale: s.locale,
			Strategy:     domain.StrategyGrammar,
			Pattern:      p.Name,
		}, true
	}
	return nil, false
}

// Gate reports whether text carries any of the locale's gate keywords.
func (s *Set) Gate(text string) bool {
	return s.lexicon.ContainsAny(text, s.lexicon.Gate)
}

// Confidence is the highest weight among all patterns of any category that
// structurally match text. Text failing the keyword gate scores zero.
func (s *Set) Confidence(text string) float64 {
	if !s.Gate(text) {
		return 0
	}
	var best float64
	for _, category := range domain.Categories {
		for _, p := range s.lists[category] {
			if p.Weight > best && p.Matches(text) {
				best = p.Weight
			}
		}
	}
	return best
}
