package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	usAmount = `[\d,]+\.\d{2}`
	usDate   = `\d{1,2}/\d{1,2}`
	usTime   = `\d{1,2}:\d{2}\s*(?:AM|PM)`
	usName   = `[A-Za-z][A-Za-z ]*?`
	usWords  = `[A-Za-z0-9&' ]+?`
	usTotal  = `(?:\.?\s+(?:Total|Balance|Running total):?\s+\$(?P<total>` + usAmount + `))?`
)

var usLexicon = &Lexicon{
	Locale: domain.LocaleUS,
	Fold:   true,
	Gate: []string{
		"Card", "Deposit", "Withdrawal", "Balance", "Approved", "Declined",
		"Direct deposit", "Auto transfer", "Autopay", "Payroll",
	},

	CardIssuers: []string{
		"Chase", "Citi", "Capital One", "American Express", "Amex", "Discover",
		"Wells Fargo", "Bank of America", "US Bank", "Visa", "Mastercard",
	},
	Institutions: []string{
		"Chase", "Bank of America", "Wells Fargo", "Citibank", "Citi", "US Bank",
		"Capital One", "PNC", "TD Bank", "Ally", "Schwab",
	},

	Approve:  []string{"approved", "purchase", "charged"},
	Cancel:   []string{"declined", "refunded", "reversed", "cancelled", "canceled"},
	Deposits: []string{"deposit", "deposited", "credit", "credited", "received"},
	Debits:   []string{"withdrawal", "withdrawn", "debit", "debited", "transfer", "sent"},
	Salary:   []string{"payroll", "salary", "direct deposit", "paycheck"},
	Auto:     []string{"auto transfer", "scheduled transfer", "autopay", "auto payment"},
	Balance:  []string{"balance"},
	Totals:   []string{"total", "running total", "statement balance", "balance"},

	DefaultInstallment:  "single",
	DefaultDescription:  "Other income",
	DefaultTransferType: "Other",
	Descriptions: []Rule{
		{Keywords: []string{"payroll", "salary", "paycheck", "direct deposit"}, Label: "Salary"},
		{Keywords: []string{"bonus"}, Label: "Bonus"},
		{Keywords: []string{"dividend", "interest"}, Label: "Investment income"},
		{Keywords: []string{"refund", "tax refund"}, Label: "Refund"},
		{Keywords: []string{"zelle", "venmo", "transfer"}, Label: "Transfer"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"insurance", "geico", "state farm"}, Label: "Insurance"},
		{Keywords: []string{"rent", "hoa"}, Label: "Rent"},
		{Keywords: []string{"savings"}, Label: "Savings"},
		{Keywords: []string{"loan", "mortgage"}, Label: "Loan repayment"},
		{Keywords: []string{"card", "credit card"}, Label: "Card payment"},
		{Keywords: []string{"verizon", "at&t", "t-mobile", "phone"}, Label: "Phone"},
		{Keywords: []string{"electric", "power", "gas", "water", "utility"}, Label: "Utilities"},
	},
	DisplayNames: map[string]string{
		"Chase": "JPMorgan Chase",
		"Citi":  "Citibank",
		"Amex":  "American Express",
		"BofA":  "Bank of America",
	},

	AmountToken:  regexp.MustCompile(`(?:US\$|\$)\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?|\d{1,3}(?:,\d{3})*\.\d{2}`),
	DateToken:    regexp.MustCompile(`(?i)(` + usDate + `)(?:\s+(?:at\s+)?(\d{1,2}:\d{2}\s*(?:AM|PM)?))?`),
	AccountToken: regexp.MustCompile(`(?i)(?:ending\s+in|ending|acct|account)\s*[#*x]*\s*(\d{4})`),
}

var usDefinition = &definition{
	lexicon: usLexicon,
	card: []*Pattern{
		newPattern("us_card_ending", FamilyCard, 0.9,
			`(?i)(?P<issuer>`+usName+`)\s+Card\s+ending\s+in\s+(?P<card>\d{4}):\s+(?:(?P<dir>approved|declined|refunded)\s+)?\$(?P<amount>`+usAmount+`)\s+at\s+(?P<merchant>`+usWords+`)\s+on\s+(?P<date>`+usDate+`)\s+at\s+(?P<time>`+usTime+`)`+usTotal,
			"Chase Card ending in 1234: Approved $45.67 at WHOLE FOODS on 10/13 at 3:45 PM. Total $1,204.50"),
		newPattern("us_card_alert", FamilyCard, 0.8,
			`(?i)(?P<dir>approved|declined):\s+\$(?P<amount>`+usAmount+`)\s+at\s+(?P<merchant>`+usWords+`)\s+on\s+(?P<date>`+usDate+`)\s+at\s+(?P<time>`+usTime+`)`+usTotal,
			"Citi alert. APPROVED: $12.99 at NETFLIX on 10/12 at 9:00 AM. Balance $830.21"),
		newPattern("us_card_simple", FamilyCard, 0.7,
			`(?i)(?P<issuer>Visa|Mastercard|Amex|Discover|Chase|Citi|Capital One)\s+card\s+(?P<dir>approved|declined)\s+\$(?P<amount>`+usAmount+`)\s+(?P<merchant>`+usWords+`)\s+(?P<date>`+usDate+`)(?:\s+(?P<time>\d{1,2}:\d{2}\s*(?:AM|PM)?))?`+usTotal,
			"Discover card approved $8.75 STARBUCKS 10/13 7:15 AM Total $412.00"),
	},
	income: []*Pattern{
		newPattern("us_bank_full", FamilyBank, 0.9,
			`(?i)(?P<bank>`+usName+`):\s+(?P<dir>deposit|withdrawal)\s+of\s+\$(?P<amount>`+usAmount+`)\s+(?:to|from)\s+account\s+ending\s+in\s+(?P<account>\d{4})\s+on\s+(?P<date>`+usDate+`)\s+at\s+(?P<time>`+usTime+`)\.\s+Balance:?\s+\$(?P<balance>`+usAmount+`)`,
			"Wells Fargo: Deposit of $250.00 to account ending in 9876 on 10/11 at 10:02 AM. Balance: $3,120.44"),
		newPattern("us_salary_direct", FamilySalary, 0.9,
			`(?i)(?P<bank>`+usName+`):\s+Direct deposit of\s+\$(?P<amount>`+usAmount+`)\s+from\s+(?P<desc>`+usWords+`)\.\s+Balance:?\s+\$(?P<balance>`+usAmount+`)`,
			"Chase: Direct deposit of $2,500.00 from ACME CORP. Balance: $4,010.12"),
		newPattern("us_bank_short", FamilyBank, 0.8,
			`(?i)(?P<bank>`+usName+`):\s+\$(?P<amount>`+usAmount+`)\s+(?P<dir>deposited|withdrawn)\.\s+Balance:?\s+\$(?P<balance>`+usAmount+`)`,
			"Ally: $600.00 withdrawn. Balance: $1,400.00"),
		newPattern("us_salary_deposit", FamilySalary, 0.8,
			`(?i)(?P<bank>`+usName+`):\s+(?P<desc>Direct deposit|Payroll deposit)\s+of\s+\$(?P<amount>`+usAmount+`)\.\s+Balance:?\s+\$(?P<balance>`+usAmount+`)`,
			"PNC: Payroll deposit of $1,850.00. Balance: $2,300.00"),
		newPattern("us_auto_transfer", FamilyAutoTransfer, 0.8,
			`(?i)(?P<desc>Auto transfer|Scheduled transfer|Auto payment|Autopay):\s+\$(?P<amount>`+usAmount+`)\s+to\s+(?P<memo>`+usWords+`)(?:\s+on\s+(?P<date>`+usDate+`))?(?:\.|$)`,
			"Autopay: $89.00 to GEICO INSURANCE on 10/01."),
		newPattern("us_salary_payroll", FamilySalary, 0.7,
			`(?i)(?P<desc>Payroll deposit|Salary deposit|Direct deposit):?\s+(?:of\s+)?\$(?P<amount>`+usAmount+`)`,
			"Direct deposit $1,200.00 posted"),
	},
	balance: []*Pattern{
		newPattern("us_balance_full", FamilyBalance, 0.9,
			`(?i)(?P<bank>`+usName+`):\s+(?:Available\s+)?balance\s+(?:for|in)\s+account\s+ending\s+in\s+(?P<account>\d{4})\s+(?:is\s+)?\$(?P<balance>`+usAmount+`)\s+as\s+of\s+(?P<date>`+usDate+`)(?:\s+at\s+(?P<time>`+usTime+`))?`,
			"Bank of America: Available balance for account ending in 4455 is $5,210.88 as of 10/13 at 8:00 AM"),
		newPattern("us_balance_short", FamilyBalance, 0.7,
			`(?i)(?P<bank>`+usName+`):\s+(?:Available\s+)?balance:?\s+\$(?P<balance>`+usAmount+`)`,
			"Schwab: Balance $12,345.67"),
	},
}
