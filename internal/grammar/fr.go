package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	frAmount   = `\d{1,3}(?:[ \x{00A0}\x{202F}.]\d{3})*,\d{2}`
	frDate     = `\d{1,2}/\d{1,2}`
	frTime     = `\d{1,2}[h:]\d{2}`
	frName     = `[A-Za-zÀ-ÿ][A-Za-zÀ-ÿ' ]*?`
	frCurrency = `[\s\x{00A0}\x{202F}]*(?:€|EUR)`
)

var frLexicon = &Lexicon{
	Locale: domain.LocaleFR,
	Fold:   true,
	Gate:   []string{"carte", "CB", "compte", "virement", "prélèvement", "solde", "salaire", "retrait", "paiement"},

	CardIssuers: []string{
		"BNP Paribas", "Société Générale", "Crédit Agricole", "LCL", "Boursorama",
		"La Banque Postale", "Crédit Mutuel", "Caisse d'Epargne", "Fortuneo", "Revolut",
	},
	Institutions: []string{
		"BNP Paribas", "Société Générale", "Crédit Agricole", "LCL", "Boursorama",
		"La Banque Postale", "Crédit Mutuel", "Caisse d'Epargne", "Fortuneo", "CIC",
	},

	Approve:  []string{"accepté", "acceptée", "autorisé", "autorisée", "paiement"},
	Cancel:   []string{"refusé", "refusée", "annulé", "annulée", "remboursé", "remboursée"},
	Deposits: []string{"virement reçu", "versement", "crédit", "créditée"},
	Debits:   []string{"prélèvement", "retrait", "débit", "virement émis"},
	Salary:   []string{"salaire", "paie"},
	Auto:     []string{"prélèvement", "virement permanent"},
	Balance:  []string{"solde"},
	Totals:   []string{"encours", "cumul", "total"},

	DefaultInstallment:  "comptant",
	DefaultDescription:  "Autre revenu",
	DefaultTransferType: "Autre",
	Descriptions: []Rule{
		{Keywords: []string{"salaire", "paie"}, Label: "Salaire"},
		{Keywords: []string{"prime"}, Label: "Prime"},
		{Keywords: []string{"dividende", "intérêts"}, Label: "Revenus financiers"},
		{Keywords: []string{"remboursement", "caf"}, Label: "Remboursement"},
		{Keywords: []string{"loyer"}, Label: "Loyer"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"assurance", "mutuelle"}, Label: "Assurance"},
		{Keywords: []string{"loyer"}, Label: "Loyer"},
		{Keywords: []string{"épargne", "livret"}, Label: "Épargne"},
		{Keywords: []string{"crédit", "prêt"}, Label: "Remboursement de prêt"},
		{Keywords: []string{"orange", "sfr", "bouygues", "free"}, Label: "Téléphone"},
		{Keywords: []string{"edf", "engie", "eau"}, Label: "Énergie"},
	},
	DisplayNames: map[string]string{
		"LCL": "Crédit Lyonnais",
	},

	AmountToken:  regexp.MustCompile(`\d{1,3}(?:[ \x{00A0}\x{202F}]\d{3})*,\d{2}(?:[\s\x{00A0}\x{202F}]?(?:€|EUR))?`),
	DateToken:    regexp.MustCompile(`(?i)(` + frDate + `)(?:\s+(?:à\s+)?(` + frTime + `))?`),
	AccountToken: regexp.MustCompile(`(?i)(?:compte|carte)\s+([\d*]{4,}|\*\d{4})`),
}

var frDefinition = &definition{
	lexicon: frLexicon,
	card: []*Pattern{
		newPattern("fr_card_full", FamilyCard, 0.9,
			`(?i)(?P<issuer>`+frName+`):\s+paiement\s+carte\s+\*(?P<card>\d{4})\s+(?P<dir>acceptée?|refusée?|annulée?)\s+de\s+(?P<amount>`+frAmount+`)`+frCurrency+`\s+chez\s+(?P<merchant>[^,]+?)\s+le\s+(?P<date>`+frDate+`)\s+à\s+(?P<time>`+frTime+`)(?:[.,]?\s+Encours:?\s+(?P<total>`+frAmount+`)`+frCurrency+`)?`,
			"Boursorama: paiement carte *1234 accepté de 45,90 € chez FNAC le 13/10 à 14h05. Encours 612,30 €"),
		newPattern("fr_card_minimal", FamilyCard, 0.7,
			`(?i)(?:CB|carte)\s+(?:(?P<dir>acceptée?|refusée?|annulée?)\s+)?(?P<amount>`+frAmount+`)`+frCurrency+`\s+chez\s+(?P<merchant>[^,.]+)`,
			"CB 12,00 € chez MONOPRIX"),
	},
	income: []*Pattern{
		newPattern("fr_bank_full", FamilyBank, 0.9,
			`(?i)(?P<bank>`+frName+`):\s+(?P<dir>virement reçu|prélèvement|retrait|versement)\s+de\s+(?P<amount>`+frAmount+`)`+frCurrency+`\s+sur\s+le\s+compte\s+(?P<account>[\d*]{4,})\s+le\s+(?P<date>`+frDate+`)(?:\s+\((?P<desc>[^)]+)\))?\.\s+Solde:?\s+(?P<balance>`+frAmount+`)`+frCurrency,
			"LCL: virement reçu de 1 200,00 € sur le compte ****5566 le 11/10 (LOYER). Solde 2 340,15 €"),
		newPattern("fr_salary", FamilySalary, 0.8,
			`(?i)(?P<bank>`+frName+`):\s+(?P<desc>salaire|paie)\s+(?:reçu|versé|crédité)e?\s+de\s+(?P<amount>`+frAmount+`)`+frCurrency+`(?:[.,]?\s+Solde:?\s+(?P<balance>`+frAmount+`)`+frCurrency+`)?`,
			"Crédit Agricole: salaire versé de 2 150,00 €. Solde 2 900,40 €"),
		newPattern("fr_auto_transfer", FamilyAutoTransfer, 0.7,
			`(?i)(?P<desc>prélèvement|virement permanent)\s+(?P<memo>[^0-9:]+?)\s+de\s+(?P<amount>`+frAmount+`)`+frCurrency,
			"prélèvement EDF de 64,20 €"),
	},
	balance: []*Pattern{
		newPattern("fr_balance", FamilyBalance, 0.8,
			`(?i)(?P<bank>`+frName+`):\s+solde\s+(?:du\s+compte\s+(?P<account>[\d*]{4,})\s+)?(?:au\s+(?P<date>`+frDate+`)\s*)?:?\s*(?P<balance>`+frAmount+`)`+frCurrency,
			"La Banque Postale: solde du compte ****7788 au 12/10 : 1 045,00 €"),
	},
}
