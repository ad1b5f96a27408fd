package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	auAmount  = `[\d,]+\.\d{2}`
	auMoney   = `(?:A\$|AU\$|AUD\s?)`
	auDate    = `\d{1,2}/\d{1,2}`
	auTime    = `\d{1,2}:\d{2}\s*(?:AM|PM)?`
	auName    = `[A-Za-z][A-Za-z ]*?`
	auWords   = `[A-Za-z0-9&' ]+?`
	auBalance = `Avail(?:able)?\s+bal(?:ance)?:?\s+`
)

var auLexicon = &Lexicon{
	Locale: domain.LocaleAU,
	Fold:   true,
	Gate:   []string{"A$", "AUD", "EFTPOS", "BPAY", "card", "deposit", "balance", "salary", "direct debit"},

	CardIssuers: []string{
		"CommBank", "Commonwealth Bank", "Westpac", "ANZ", "NAB", "ING", "Macquarie", "Bendigo", "Amex",
	},
	Institutions: []string{
		"CommBank", "Commonwealth Bank", "Westpac", "ANZ", "NAB", "ING", "Macquarie", "Bendigo",
		"Suncorp", "St.George",
	},

	Approve:  []string{"approved", "purchase"},
	Cancel:   []string{"declined", "refunded", "refund"},
	Deposits: []string{"deposit", "transfer in", "received"},
	Debits:   []string{"withdrawal", "transfer out", "sent"},
	Salary:   []string{"salary", "pay", "wages"},
	Auto:     []string{"direct debit", "bpay", "scheduled payment"},
	Balance:  []string{"available balance", "avail bal", "balance"},
	Totals:   []string{"total", "balance"},

	DefaultInstallment:  "single",
	DefaultDescription:  "Other income",
	DefaultTransferType: "Other",
	Descriptions: []Rule{
		{Keywords: []string{"salary", "wages", "pay "}, Label: "Salary"},
		{Keywords: []string{"bonus"}, Label: "Bonus"},
		{Keywords: []string{"ato", "refund"}, Label: "Refund"},
		{Keywords: []string{"dividend", "interest"}, Label: "Investment income"},
		{Keywords: []string{"rent"}, Label: "Rent"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"insurance", "medibank", "bupa"}, Label: "Insurance"},
		{Keywords: []string{"rent"}, Label: "Rent"},
		{Keywords: []string{"super", "savings"}, Label: "Savings"},
		{Keywords: []string{"mortgage", "loan"}, Label: "Loan repayment"},
		{Keywords: []string{"telstra", "optus", "vodafone"}, Label: "Phone"},
		{Keywords: []string{"agl", "origin", "energy", "water"}, Label: "Utilities"},
	},
	DisplayNames: map[string]string{
		"CommBank": "Commonwealth Bank",
		"NAB":      "National Australia Bank",
		"ANZ":      "Australia and New Zealand Banking Group",
	},

	AmountToken:  regexp.MustCompile(`(?:AU\$|A\$|AUD\s?|\$)\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?|\d{1,3}(?:,\d{3})*\.\d{2}`),
	DateToken:    regexp.MustCompile(`(?i)(` + auDate + `)(?:\s+(?:at\s+)?(` + auTime + `))?`),
	AccountToken: regexp.MustCompile(`(?i)(?:acc(?:ount)?|card)\s+(?:ending\s+)?(\d{4})`),
}

var auDefinition = &definition{
	lexicon: auLexicon,
	card: []*Pattern{
		newPattern("au_card_full", FamilyCard, 0.9,
			`(?i)(?P<issuer>`+auName+`):\s+(?P<dir>approved|declined|refunded)\s+`+auMoney+`(?P<amount>`+auAmount+`)\s+at\s+(?P<merchant>`+auWords+`)\s+with\s+card\s+ending\s+(?P<card>\d{4})\s+on\s+(?P<date>`+auDate+`)\s+at\s+(?P<time>`+auTime+`)(?:\.?\s+(?:Total|Balance):?\s+`+auMoney+`(?P<total>`+auAmount+`))?`,
			"CommBank: approved A$54.20 at WOOLWORTHS with card ending 8899 on 13/10 at 6:15 PM. Balance A$1,204.80"),
		newPattern("au_card_minimal", FamilyCard, 0.7,
			`(?i)EFTPOS\s+(?P<dir>purchase|refund)\s+`+auMoney+`(?P<amount>`+auAmount+`)\s+at\s+(?P<merchant>[A-Za-z0-9&' ]+)`,
			"EFTPOS purchase A$8.50 at BOOST JUICE"),
	},
	income: []*Pattern{
		newPattern("au_bank_full", FamilyBank, 0.9,
			`(?i)(?P<bank>`+auName+`):\s+(?P<dir>deposit|withdrawal|transfer in|transfer out)\s+of\s+`+auMoney+`(?P<amount>`+auAmount+`)\s+(?:to|from)\s+acc(?:ount)?\s+(?:ending\s+)?(?P<account>\d{4})\s+on\s+(?P<date>`+auDate+`)(?:\s+ref\s+(?P<desc>`+auWords+`))?\.\s+`+auBalance+auMoney+`(?P<balance>`+auAmount+`)`,
			"Westpac: deposit of A$600.00 to acc ending 1234 on 11/10 ref RENT SHARE. Available balance A$2,150.00"),
		newPattern("au_salary", FamilySalary, 0.8,
			`(?i)(?P<bank>`+auName+`):\s+(?P<desc>salary|pay|wages)\s+(?:of\s+)?`+auMoney+`(?P<amount>`+auAmount+`)\s+received(?:\.\s+`+auBalance+auMoney+`(?P<balance>`+auAmount+`))?`,
			"NAB: Salary of A$3,800.00 received. Available balance A$5,020.10"),
		newPattern("au_auto_transfer", FamilyAutoTransfer, 0.7,
			`(?i)(?P<desc>Direct debit|BPAY|Scheduled payment)\s+(?:of\s+)?`+auMoney+`(?P<amount>`+auAmount+`)\s+to\s+(?P<memo>`+auWords+`)(?:\.|$)`,
			"Direct debit of A$120.00 to TELSTRA."),
	},
	balance: []*Pattern{
		newPattern("au_balance", FamilyBalance, 0.8,
			`(?i)(?P<bank>`+auName+`):\s+(?:available\s+)?balance\s+for\s+acc(?:ount)?\s+(?:ending\s+)?(?P<account>\d{4})\s+is\s+`+auMoney+`(?P<balance>`+auAmount+`)`,
			"ANZ: available balance for acc ending 5566 is A$3,300.00"),
	},
}
