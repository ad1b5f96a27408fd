package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	deAmount   = `\d{1,3}(?:\.\d{3})*,\d{2}`
	deDate     = `\d{1,2}\.\d{1,2}\.?`
	deTime     = `\d{1,2}:\d{2}`
	deName     = `[A-Za-zÄÖÜäöüß][A-Za-zÄÖÜäöüß ]*?`
	deCurrency = `\s*(?:€|EUR)`
)

var deLexicon = &Lexicon{
	Locale: domain.LocaleDE,
	Fold:   true,
	Gate:   []string{"Karte", "girocard", "Konto", "Gutschrift", "Lastschrift", "Überweisung", "Kontostand", "Gehalt", "Dauerauftrag"},

	CardIssuers: []string{
		"Sparkasse", "Volksbank", "Commerzbank", "Deutsche Bank", "DKB", "ING", "N26",
		"comdirect", "Postbank", "Barclays", "Amex",
	},
	Institutions: []string{
		"Sparkasse", "Volksbank", "Raiffeisenbank", "Commerzbank", "Deutsche Bank", "DKB",
		"ING", "N26", "comdirect", "Postbank", "HypoVereinsbank",
	},

	Approve:  []string{"genehmigt", "Zahlung", "belastet", "Umsatz"},
	Cancel:   []string{"storniert", "abgelehnt", "erstattet"},
	Deposits: []string{"Gutschrift", "Eingang", "eingegangen", "gutgeschrieben"},
	Debits:   []string{"Lastschrift", "Überweisung", "Abbuchung", "abgebucht", "Auszahlung"},
	Salary:   []string{"Gehalt", "Lohn", "Bezüge"},
	Auto:     []string{"Dauerauftrag", "Lastschrift"},
	Balance:  []string{"Kontostand", "Saldo"},
	Totals:   []string{"Gesamtumsatz", "Umsatz gesamt", "Summe"},

	DefaultInstallment:  "Einmalzahlung",
	DefaultDescription:  "Sonstige Einnahme",
	DefaultTransferType: "Sonstiges",
	Descriptions: []Rule{
		{Keywords: []string{"Gehalt", "Lohn", "Bezüge"}, Label: "Gehalt"},
		{Keywords: []string{"Bonus", "Prämie"}, Label: "Bonus"},
		{Keywords: []string{"Dividende", "Zinsen"}, Label: "Kapitalertrag"},
		{Keywords: []string{"Erstattung", "Rückzahlung"}, Label: "Erstattung"},
		{Keywords: []string{"Miete"}, Label: "Miete"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"Versicherung"}, Label: "Versicherung"},
		{Keywords: []string{"Miete", "Hausverwaltung"}, Label: "Miete"},
		{Keywords: []string{"Sparplan", "Sparen"}, Label: "Sparen"},
		{Keywords: []string{"Kredit", "Darlehen"}, Label: "Kreditrate"},
		{Keywords: []string{"Telekom", "Vodafone", "Mobilfunk"}, Label: "Telefon"},
		{Keywords: []string{"Strom", "Stadtwerke", "Gas", "Wasser"}, Label: "Nebenkosten"},
	},
	DisplayNames: map[string]string{
		"DKB": "Deutsche Kreditbank",
		"ING": "ING-DiBa",
	},

	AmountToken:  regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}(?:\s?(?:€|EUR))?`),
	DateToken:    regexp.MustCompile(`(?i)(\d{1,2}\.\d{1,2}\.(?:\d{4})?)(?:\s*(?:um\s+)?(` + deTime + `))?`),
	AccountToken: regexp.MustCompile(`(?i)(?:Konto|Karte|Kreditkarte)\s+((?:DE\d{2}\s?)?[\d*]{4,}|\*\d{4})`),
}

var deDefinition = &definition{
	lexicon: deLexicon,
	card: []*Pattern{
		newPattern("de_card_full", FamilyCard, 0.9,
			`(?i)(?P<issuer>`+deName+`)\s+Kreditkarte\s+\*(?P<card>\d{4}):\s+(?P<dir>genehmigt|storniert|abgelehnt)\s+(?P<amount>`+deAmount+`)`+deCurrency+`\s+bei\s+(?P<merchant>[^,]+?)\s+am\s+(?P<date>`+deDate+`)\s+um\s+(?P<time>`+deTime+`)(?:\s*Uhr)?(?:[.,]?\s+Gesamtumsatz:?\s+(?P<total>`+deAmount+`)`+deCurrency+`)?`,
			"DKB Kreditkarte *4711: genehmigt 89,90 € bei MEDIA MARKT am 13.10. um 18:20 Uhr. Gesamtumsatz 1.234,56 €"),
		newPattern("de_card_minimal", FamilyCard, 0.7,
			`(?i)(?P<issuer>girocard|Kreditkarte|Karte)\s+(?:Zahlung|Umsatz)\s+(?P<amount>`+deAmount+`)`+deCurrency+`\s+bei\s+(?P<merchant>[^,.]+)`,
			"girocard Zahlung 12,50 € bei REWE"),
	},
	income: []*Pattern{
		newPattern("de_bank_full", FamilyBank, 0.9,
			`(?i)(?P<bank>`+deName+`):\s+(?P<dir>Gutschrift|Lastschrift|Überweisung|Abbuchung)\s+(?P<amount>`+deAmount+`)`+deCurrency+`\s+(?:auf|von)\s+Konto\s+(?P<account>(?:DE\d{2}\s?)?[\d*]{4,})\s+am\s+(?P<date>`+deDate+`)(?:\s+Verwendungszweck:?\s+(?P<desc>[^.]+?))?\.\s+Kontostand:?\s+(?P<balance>`+deAmount+`)`+deCurrency,
			"Sparkasse: Gutschrift 1.500,00 € auf Konto ****1234 am 11.10. Verwendungszweck Miete. Kontostand 3.210,45 €"),
		newPattern("de_salary", FamilySalary, 0.8,
			`(?i)(?P<bank>`+deName+`):\s+(?P<desc>Gehalt|Lohn|Bezüge)\s+(?:eingegangen|gutgeschrieben):?\s+(?P<amount>`+deAmount+`)`+deCurrency+`(?:[.,]?\s+Kontostand:?\s+(?P<balance>`+deAmount+`)`+deCurrency+`)?`,
			"Volksbank: Gehalt eingegangen 3.250,00 €. Kontostand 4.100,20 €"),
		newPattern("de_auto_transfer", FamilyAutoTransfer, 0.7,
			`(?i)(?P<desc>Lastschrift|Dauerauftrag)\s+(?:an|von)\s+(?P<memo>[^,]+?)\s+(?:über\s+)?(?P<amount>`+deAmount+`)`+deCurrency,
			"Dauerauftrag an Hausverwaltung Müller über 850,00 €"),
	},
	balance: []*Pattern{
		newPattern("de_balance", FamilyBalance, 0.8,
			`(?i)(?P<bank>`+deName+`):\s+Kontostand\s+(?:Konto\s+(?P<account>[\d*]{4,})\s+)?(?:am\s+(?P<date>`+deDate+`)\s+)?(?P<balance>`+deAmount+`)`+deCurrency,
			"Commerzbank: Kontostand Konto ****9876 am 12.10. 2.345,67 €"),
	},
}
