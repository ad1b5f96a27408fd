package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	caAmount = `[\d,]+\.\d{2}`
	caMoney  = `(?:C\$|CA\$|CAD\s?)`
	caDate   = `\d{1,2}/\d{1,2}`
	caTime   = `\d{1,2}:\d{2}\s*(?:AM|PM)?`
	caName   = `[A-Za-z][A-Za-z ]*?`
	caWords  = `[A-Za-z0-9&' ]+?`
)

var caLexicon = &Lexicon{
	Locale: domain.LocaleCA,
	Fold:   true,
	Gate:   []string{"C$", "CAD", "Interac", "Visa", "Mastercard", "deposit", "balance", "pre-authorized"},

	CardIssuers: []string{
		"RBC", "TD", "Scotiabank", "BMO", "CIBC", "Desjardins", "National Bank", "Tangerine",
		"Simplii", "Amex",
	},
	Institutions: []string{
		"RBC", "TD", "Scotiabank", "BMO", "CIBC", "Desjardins", "National Bank", "Tangerine",
		"Simplii", "EQ Bank",
	},

	Approve:  []string{"purchase", "approved"},
	Cancel:   []string{"refund", "declined", "reversed"},
	Deposits: []string{"deposit", "interac e-transfer received", "received"},
	Debits:   []string{"withdrawal", "interac e-transfer sent", "sent"},
	Salary:   []string{"payroll", "pay"},
	Auto:     []string{"pre-authorized debit", "preauthorized payment", "scheduled payment"},
	Balance:  []string{"balance"},
	Totals:   []string{"balance", "total"},

	DefaultInstallment:  "single",
	DefaultDescription:  "Other income",
	DefaultTransferType: "Other",
	Descriptions: []Rule{
		{Keywords: []string{"payroll", "pay deposit"}, Label: "Salary"},
		{Keywords: []string{"e-transfer"}, Label: "Interac e-Transfer"},
		{Keywords: []string{"gst", "cra", "refund"}, Label: "Government refund"},
		{Keywords: []string{"dividend", "interest"}, Label: "Investment income"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"insurance", "intact"}, Label: "Insurance"},
		{Keywords: []string{"rent"}, Label: "Rent"},
		{Keywords: []string{"tfsa", "rrsp", "savings"}, Label: "Savings"},
		{Keywords: []string{"mortgage", "loan"}, Label: "Loan repayment"},
		{Keywords: []string{"rogers", "bell", "telus", "wireless"}, Label: "Phone"},
		{Keywords: []string{"hydro", "enbridge", "utility"}, Label: "Utilities"},
	},
	DisplayNames: map[string]string{
		"RBC":  "Royal Bank of Canada",
		"TD":   "TD Canada Trust",
		"BMO":  "Bank of Montreal",
		"CIBC": "Canadian Imperial Bank of Commerce",
	},

	AmountToken:  regexp.MustCompile(`(?:CA\$|C\$|CAD\s?|\$)\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?|\d{1,3}(?:,\d{3})*\.\d{2}`),
	DateToken:    regexp.MustCompile(`(?i)(` + caDate + `)(?:\s+(?:at\s+)?(` + caTime + `))?`),
	AccountToken: regexp.MustCompile(`(?i)(?:account|acct|card)\s*[#*]*\s*(\d{4})|\*(\d{4})`),
}

var caDefinition = &definition{
	lexicon: caLexicon,
	card: []*Pattern{
		newPattern("ca_card_full", FamilyCard, 0.9,
			`(?i)(?P<issuer>`+caName+`)\s+(?:Visa|Mastercard)\s+\*(?P<card>\d{4}):\s+(?P<dir>purchase|refund|declined)\s+of\s+`+caMoney+`(?P<amount>`+caAmount+`)\s+at\s+(?P<merchant>`+caWords+`)\s+on\s+(?P<date>`+caDate+`)\s+at\s+(?P<time>`+caTime+`)(?:\.?\s+(?:Balance|Total):?\s+`+caMoney+`(?P<total>`+caAmount+`))?`,
			"RBC Visa *4455: purchase of C$89.99 at CANADIAN TIRE on 10/13 at 3:20 PM. Balance C$1,540.00"),
		newPattern("ca_card_minimal", FamilyCard, 0.7,
			`(?i)`+caMoney+`(?P<amount>`+caAmount+`)\s+(?P<dir>purchase|refund)\s+at\s+(?P<merchant>`+caWords+`)\s+(?:with|on)\s+(?:your\s+)?(?P<issuer>[A-Za-z]+)\s+(?:card|Visa|Mastercard)`,
			"C$12.40 purchase at TIM HORTONS with your Tangerine card"),
	},
	income: []*Pattern{
		newPattern("ca_bank_full", FamilyBank, 0.9,
			`(?i)(?P<bank>`+caName+`):\s+(?P<dir>Interac e-Transfer received|Interac e-Transfer sent|deposit|withdrawal)\s+(?:of\s+)?`+caMoney+`(?P<amount>`+caAmount+`)\s+(?:from|to)\s+(?P<desc>`+caWords+`)\s+(?:into|from)\s+account\s+\*(?P<account>\d{4})\.\s+Balance:?\s+`+caMoney+`(?P<balance>`+caAmount+`)`,
			"TD: Interac e-Transfer received of C$250.00 from JOHN DOE into account *7788. Balance C$1,020.50"),
		newPattern("ca_salary", FamilySalary, 0.8,
			`(?i)(?P<bank>`+caName+`):\s+(?P<desc>payroll|pay)\s+deposit\s+(?:of\s+)?`+caMoney+`(?P<amount>`+caAmount+`)(?:\.?\s+Balance:?\s+`+caMoney+`(?P<balance>`+caAmount+`))?`,
			"BMO: Payroll deposit of C$2,300.00. Balance C$3,450.75"),
		newPattern("ca_auto_transfer", FamilyAutoTransfer, 0.7,
			`(?i)(?P<desc>Pre-authorized debit|Preauthorized payment|Scheduled payment)\s+(?:of\s+)?`+caMoney+`(?P<amount>`+caAmount+`)\s+to\s+(?P<memo>`+caWords+`)(?:\.|$)`,
			"Pre-authorized debit of C$75.00 to ROGERS WIRELESS."),
	},
	balance: []*Pattern{
		newPattern("ca_balance", FamilyBalance, 0.8,
			`(?i)(?P<bank>`+caName+`):\s+balance\s+in\s+account\s+\*(?P<account>\d{4})\s+is\s+`+caMoney+`(?P<balance>`+caAmount+`)`,
			"CIBC: balance in account *3344 is C$980.00"),
	},
}
