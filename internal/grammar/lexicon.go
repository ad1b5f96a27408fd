package grammar

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"golang.org/x/text/cases"
)

const (
	DefaultCardID = "****"
	DefaultHolder = "***"
)

// Rule maps any of its keywords to a label.
type Rule struct {
	Keywords []string
	Label    string
}

// Lexicon is the locale vocabulary shared by the grammar and the heuristic
// extractor.
type Lexicon struct {
	Locale domain.Locale
	// Fold enables case-insensitive keyword matching.
	Fold bool

	// Gate holds the keywords at least one of which must appear before any
	// pattern of the locale is considered.
	Gate []string

	CardIssuers  []string
	Institutions []string

	Approve  []string
	Cancel   []string
	Deposits []string
	Debits   []string
	Salary   []string
	Auto     []string
	Balance  []string
	Totals   []string

	DefaultInstallment  string
	DefaultDescription  string
	DefaultTransferType string
	Descriptions        []Rule
	TransferTypes       []Rule
	DisplayNames        map[string]string

	// AmountToken matches an amount-shaped token: grouped digits, a
	// currency mark or a minor-unit fraction.
	AmountToken *regexp.Regexp
	// DateToken matches a date with an optional time; group 1 is the date
	// and group 2 the time.
	DateToken *regexp.Regexp
	// AccountToken matches a masked account or card reference; the first
	// non-empty group holds the reference.
	AccountToken *regexp.Regexp
	// InstallmentToken matches an installment plan, when the locale has one.
	InstallmentToken *regexp.Regexp
}

var folder = cases.Fold()

func (l *Lexicon) normalise(s string) string {
	if l.Fold {
		return folder.String(s)
	}
	return s
}

// Contains reports whether word occurs in text under the lexicon's case rules.
func (l *Lexicon) Contains(text, word string) bool {
	return l.Index(text, word) >= 0
}

// ContainsAny reports whether any of words occurs in text.
func (l *Lexicon) ContainsAny(text string, words []string) bool {
	for _, w := range words {
		if l.Contains(text, w) {
			return true
		}
	}
	return false
}

// Index returns the byte offset of the first occurrence of word in text, or -1.
func (l *Lexicon) Index(text, word string) int {
	if word == "" {
		return -1
	}
	if !l.Fold {
		return strings.Index(text, word)
	}
	for i := 0; i+len(word) <= len(text); {
		if strings.EqualFold(text[i:i+len(word)], word) {
			return i
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return -1
}

// IndexAny returns the earliest occurrence of any of words in text and the
// matched word. Longer words win ties.
func (l *Lexicon) IndexAny(text string, words []string) (int, string) {
	best, found := -1, ""
	for _, w := range words {
		i := l.Index(text, w)
		if i < 0 {
			continue
		}
		if best < 0 || i < best || (i == best && len(w) > len(found)) {
			best, found = i, w
		}
	}
	return best, found
}

func (l *Lexicon) equal(a, b string) bool {
	return l.normalise(strings.TrimSpace(a)) == l.normalise(strings.TrimSpace(b))
}

func (l *Lexicon) oneOf(word string, set []string) bool {
	for _, w := range set {
		if l.equal(word, w) {
			return true
		}
	}
	return false
}

// CardDirection maps a captured direction word to a card direction.
func (l *Lexicon) CardDirection(word string) (domain.CardDirection, bool) {
	switch {
	case l.oneOf(word, l.Cancel):
		return domain.CardCancelled, true
	case l.oneOf(word, l.Approve):
		return domain.CardApproved, true
	}
	return "", false
}

// IncomeDirection maps a captured direction word to an account direction.
func (l *Lexicon) IncomeDirection(word string) (domain.IncomeDirection, bool) {
	switch {
	case l.oneOf(word, l.Deposits):
		return domain.Deposit, true
	case l.oneOf(word, l.Debits):
		return domain.Withdrawal, true
	}
	return "", false
}

// IsSalary reports whether a description names a salary payment.
func (l *Lexicon) IsSalary(desc string) bool {
	return desc != "" && l.oneOf(desc, l.Salary)
}

// FindInstitution returns the leftmost name from names that occurs in text.
func (l *Lexicon) FindInstitution(text string, names []string) string {
	_, name := l.IndexAny(text, names)
	return name
}

// InferDescription labels a transaction from keywords in its text.
func (l *Lexicon) InferDescription(text string) string {
	if label := l.firstRule(text, l.Descriptions); label != "" {
		return label
	}
	return l.DefaultDescription
}

// InferTransferType labels an automatic transfer from keywords in its text.
func (l *Lexicon) InferTransferType(text string) string {
	if label := l.firstRule(text, l.TransferTypes); label != "" {
		return label
	}
	return l.DefaultTransferType
}

func (l *Lexicon) firstRule(text string, rules []Rule) string {
	for _, r := range rules {
		if l.ContainsAny(text, r.Keywords) {
			return r.Label
		}
	}
	return ""
}

// DisplayName returns the human-facing name of an institution.
func (l *Lexicon) DisplayName(raw string) string {
	if name, ok := l.DisplayNames[raw]; ok {
		return name
	}
	for key, name := range l.DisplayNames {
		if l.equal(key, raw) {
			return name
		}
	}
	return raw
}

var merchantNoise = strings.NewReplacer(
	"주식회사", "",
	"㈜", "",
	"(주)", "",
	"（주）", "",
)

// CleanMerchant strips corporate markers and surrounding punctuation from a
// merchant name and collapses internal whitespace.
func CleanMerchant(raw string) string {
	s := merchantNoise.Replace(raw)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .,;:，。")
}

// InstitutionDisplayName resolves an institution name for a locale. Unknown
// locales and names are returned unchanged.
func InstitutionDisplayName(locale domain.Locale, raw string) string {
	lex, ok := lexicons[locale]
	if !ok {
		return raw
	}
	return lex.DisplayName(raw)
}

// LexiconFor returns the vocabulary of a locale.
func LexiconFor(locale domain.Locale) (*Lexicon, bool) {
	lex, ok := lexicons[locale]
	return lex, ok
}
