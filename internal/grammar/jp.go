package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	jpAmount = `\d{1,3}(?:,\d{3})*`
	jpDate   = `\d{1,2}/\d{1,2}|\d{1,2}月\d{1,2}日`
	jpTime   = `\d{1,2}:\d{2}`
)

var jpLexicon = &Lexicon{
	Locale: domain.LocaleJP,
	Gate:   []string{"カード", "銀行", "入金", "出金", "承認", "取消", "残高", "給与", "振替", "利用"},

	CardIssuers: []string{
		"楽天カード", "三井住友カード", "JCBカード", "JCB", "イオンカード", "セゾンカード", "dカード", "エポスカード",
	},
	Institutions: []string{
		"三菱UFJ銀行", "三井住友銀行", "みずほ銀行", "ゆうちょ銀行", "りそな銀行", "楽天銀行",
		"住信SBIネット銀行", "PayPay銀行",
	},

	Approve:  []string{"承認", "ご利用", "利用"},
	Cancel:   []string{"取消", "取り消し", "キャンセル"},
	Deposits: []string{"入金", "振込入金"},
	Debits:   []string{"出金", "引落", "引き落とし", "振込", "振替"},
	Salary:   []string{"給与", "給料", "賞与"},
	Auto:     []string{"口座振替", "自動引落"},
	Balance:  []string{"残高"},
	Totals:   []string{"累計", "ご利用累計", "合計"},

	DefaultInstallment:  "1回払い",
	DefaultDescription:  "その他収入",
	DefaultTransferType: "その他",
	Descriptions: []Rule{
		{Keywords: []string{"給与", "給料"}, Label: "給与"},
		{Keywords: []string{"賞与", "ボーナス"}, Label: "賞与"},
		{Keywords: []string{"配当", "利息"}, Label: "投資収益"},
		{Keywords: []string{"還付", "返金"}, Label: "還付"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"保険"}, Label: "保険料"},
		{Keywords: []string{"家賃"}, Label: "家賃"},
		{Keywords: []string{"ローン"}, Label: "ローン返済"},
		{Keywords: []string{"カード"}, Label: "カード代金"},
		{Keywords: []string{"携帯", "通信"}, Label: "通信費"},
		{Keywords: []string{"電気"}, Label: "電気料金"},
		{Keywords: []string{"ガス"}, Label: "ガス料金"},
		{Keywords: []string{"水道"}, Label: "水道料金"},
	},
	DisplayNames: map[string]string{
		"JCB": "JCBカード",
	},

	AmountToken:      regexp.MustCompile(`(?:¥|￥)\s?\d{1,3}(?:,\d{3})*|\d{1,3}(?:,\d{3})+(?:円)?|\d+円`),
	DateToken:        regexp.MustCompile(`(` + jpDate + `)(?:\s*(` + jpTime + `))?`),
	AccountToken:     regexp.MustCompile(`口座\s*([\d*]{4,})`),
	InstallmentToken: regexp.MustCompile(`一括払い|1回払い|\d+回払い|リボ払い`),
}

var jpDefinition = &definition{
	lexicon: jpLexicon,
	card: []*Pattern{
		newPattern("jp_card_full", FamilyCard, 0.9,
			`(?P<issuer>[^\s【】\[\]]+カード)[【\[]?(?P<dir>承認|取消)[】\]]?\s*(?P<date>`+jpDate+`)\s+(?P<time>`+jpTime+`)\s+(?P<merchant>\S+)\s+(?P<amount>`+jpAmount+`)円(?:\s+累計(?P<total>`+jpAmount+`)円)?`,
			"楽天カード【承認】10/13 15:48 セブンイレブン 1,280円 累計45,600円"),
		newPattern("jp_card_minimal", FamilyCard, 0.7,
			`(?P<issuer>\S+カード)\s*ご利用\s*(?P<amount>`+jpAmount+`)円\s+(?P<merchant>\S+)`,
			"三井住友カード ご利用 3,200円 スターバックス"),
	},
	income: []*Pattern{
		newPattern("jp_bank_full", FamilyBank, 0.9,
			`(?P<bank>\S+銀行)\s+(?P<date>`+jpDate+`)\s+(?P<time>`+jpTime+`)\s+口座(?P<account>[\d*]+)\s+(?P<dir>入金|出金)\s+(?P<amount>`+jpAmount+`)円\s+(?P<desc>\S+)\s+残高\s*(?P<balance>`+jpAmount+`)円`,
			"三菱UFJ銀行 10/11 09:00 口座****1234 入金 250,000円 振込 残高 1,250,000円"),
		newPattern("jp_salary", FamilySalary, 0.8,
			`(?P<bank>\S+銀行)\s*(?P<desc>給与|賞与)振込\s+(?P<amount>`+jpAmount+`)円(?:\s+残高\s*(?P<balance>`+jpAmount+`)円)?`,
			"みずほ銀行 給与振込 320,000円 残高 1,020,000円"),
		newPattern("jp_auto_transfer", FamilyAutoTransfer, 0.7,
			`(?P<desc>口座振替|自動引落)\s+(?P<memo>\S+)\s+(?P<amount>`+jpAmount+`)円`,
			"口座振替 電気料金 8,400円"),
	},
	balance: []*Pattern{
		newPattern("jp_balance", FamilyBalance, 0.8,
			`(?P<bank>\S+銀行)\s+口座(?P<account>[\d*]+)\s+残高\s*(?P<balance>`+jpAmount+`)円`,
			"ゆうちょ銀行 口座****5678 残高 540,000円"),
	},
}
