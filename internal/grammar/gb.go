package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	gbAmount = `[\d,]+\.\d{2}`
	gbDate   = `\d{1,2}/\d{1,2}`
	gbTime   = `\d{1,2}:\d{2}`
	gbName   = `[A-Za-z][A-Za-z ]*?`
	gbWords  = `[A-Za-z0-9&' ]+?`
)

var gbLexicon = &Lexicon{
	Locale: domain.LocaleGB,
	Fold:   true,
	Gate:   []string{"£", "card", "paid in", "paid out", "balance", "salary", "direct debit", "standing order"},

	CardIssuers: []string{
		"Barclaycard", "Barclays", "HSBC", "Lloyds", "NatWest", "Monzo", "Santander",
		"Nationwide", "Halifax", "Starling", "Amex",
	},
	Institutions: []string{
		"Barclays", "HSBC", "Lloyds", "NatWest", "Santander", "Nationwide", "Halifax",
		"Monzo", "Starling", "TSB", "Revolut",
	},

	Approve:  []string{"approved", "spent", "paid"},
	Cancel:   []string{"declined", "refunded", "reversed"},
	Deposits: []string{"paid in", "credited", "received"},
	Debits:   []string{"paid out", "debited", "sent", "withdrawn"},
	Salary:   []string{"salary", "wages", "payroll"},
	Auto:     []string{"direct debit", "standing order"},
	Balance:  []string{"balance"},
	Totals:   []string{"total spent", "total", "statement balance"},

	DefaultInstallment:  "single",
	DefaultDescription:  "Other income",
	DefaultTransferType: "Other",
	Descriptions: []Rule{
		{Keywords: []string{"salary", "wages", "payroll"}, Label: "Salary"},
		{Keywords: []string{"bonus"}, Label: "Bonus"},
		{Keywords: []string{"dividend", "interest"}, Label: "Investment income"},
		{Keywords: []string{"refund", "hmrc"}, Label: "Refund"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"insurance", "aviva"}, Label: "Insurance"},
		{Keywords: []string{"council tax"}, Label: "Council tax"},
		{Keywords: []string{"rent", "letting"}, Label: "Rent"},
		{Keywords: []string{"mortgage", "loan"}, Label: "Loan repayment"},
		{Keywords: []string{"card"}, Label: "Card payment"},
		{Keywords: []string{"vodafone", "o2", "mobile"}, Label: "Phone"},
		{Keywords: []string{"british gas", "octopus", "edf", "energy", "water"}, Label: "Utilities"},
	},
	DisplayNames: map[string]string{
		"Lloyds":  "Lloyds Bank",
		"NatWest": "National Westminster Bank",
	},

	AmountToken:  regexp.MustCompile(`£\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?|\d{1,3}(?:,\d{3})*\.\d{2}`),
	DateToken:    regexp.MustCompile(`(?i)(` + gbDate + `)(?:\s+(?:at\s+)?(` + gbTime + `))?`),
	AccountToken: regexp.MustCompile(`(?i)(?:ending|acc(?:ount)?)\s*[#*x]*\s*(\d{4})`),
}

var gbDefinition = &definition{
	lexicon: gbLexicon,
	card: []*Pattern{
		newPattern("gb_card_full", FamilyCard, 0.9,
			`(?i)(?P<issuer>`+gbName+`):\s+card\s+ending\s+(?P<card>\d{4})\s+(?P<dir>approved|declined|refunded)\s+£(?P<amount>`+gbAmount+`)\s+at\s+(?P<merchant>`+gbWords+`)\s+on\s+(?P<date>`+gbDate+`)\s+(?:at\s+)?(?P<time>`+gbTime+`)(?:\.?\s+(?:total\s+spent|balance):?\s+£(?P<total>`+gbAmount+`))?`,
			"Barclaycard: card ending 4321 approved £23.40 at TESCO STORES on 13/10 at 18:05. Total spent £812.30"),
		newPattern("gb_card_minimal", FamilyCard, 0.7,
			`(?i)£(?P<amount>`+gbAmount+`)\s+(?P<dir>spent|refunded)\s+at\s+(?P<merchant>`+gbWords+`)\s+(?:with|on)\s+(?:your\s+)?(?P<issuer>[A-Za-z]+)\s+card`,
			"£4.50 spent at PRET A MANGER with your Monzo card"),
	},
	income: []*Pattern{
		newPattern("gb_bank_full", FamilyBank, 0.9,
			`(?i)(?P<bank>`+gbName+`):\s+£(?P<amount>`+gbAmount+`)\s+(?P<dir>paid in|paid out|credited|debited)\s+(?:to|from)\s+account\s+ending\s+(?P<account>\d{4})\s+on\s+(?P<date>`+gbDate+`)(?:\s+ref\s+(?P<desc>`+gbWords+`))?\.\s+Balance:?\s+£(?P<balance>`+gbAmount+`)`,
			"Lloyds: £150.00 paid in to account ending 9876 on 11/10 ref J SMITH. Balance £1,234.56"),
		newPattern("gb_salary", FamilySalary, 0.8,
			`(?i)(?P<bank>`+gbName+`):\s+(?P<desc>salary|wages|payroll)\s+(?:of\s+)?£(?P<amount>`+gbAmount+`)\s+(?:has been\s+)?(?:paid in|received)(?:\.\s+Balance:?\s+£(?P<balance>`+gbAmount+`))?`,
			"Nationwide: Salary of £2,450.00 has been paid in. Balance £3,100.25"),
		newPattern("gb_auto_transfer", FamilyAutoTransfer, 0.7,
			`(?i)(?P<desc>Direct Debit|Standing Order)\s+(?:of\s+)?£(?P<amount>`+gbAmount+`)\s+(?:to|paid to)\s+(?P<memo>`+gbWords+`)(?:\s+on\s+(?P<date>`+gbDate+`))?(?:\.|$)`,
			"Direct Debit of £45.00 to BRITISH GAS on 01/10."),
	},
	balance: []*Pattern{
		newPattern("gb_balance", FamilyBalance, 0.8,
			`(?i)(?P<bank>`+gbName+`):\s+balance\s+(?:for|on)\s+account\s+ending\s+(?P<account>\d{4})\s+is\s+£(?P<balance>`+gbAmount+`)(?:\s+on\s+(?P<date>`+gbDate+`))?`,
			"HSBC: balance for account ending 1122 is £640.10 on 12/10"),
	},
}
