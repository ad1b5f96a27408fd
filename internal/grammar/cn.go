package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	cnAmount = `\d{1,3}(?:,\d{3})*\.\d{2}`
	cnDate   = `\d{1,2}月\d{1,2}日|\d{1,2}/\d{1,2}`
	cnTime   = `\d{1,2}:\d{2}`
)

var cnLexicon = &Lexicon{
	Locale: domain.LocaleCN,
	Gate:   []string{"信用卡", "银行", "账户", "消费", "撤销", "存入", "转出", "余额", "工资", "扣款"},

	CardIssuers: []string{
		"招商银行", "工商银行", "建设银行", "中国银行", "交通银行", "农业银行", "浦发银行", "中信银行",
	},
	Institutions: []string{
		"工商银行", "建设银行", "农业银行", "中国银行", "招商银行", "交通银行", "邮储银行", "浦发银行", "中信银行",
	},

	Approve:  []string{"消费", "支付", "交易成功"},
	Cancel:   []string{"撤销", "退款", "退货"},
	Deposits: []string{"存入", "入账", "收入", "转入"},
	Debits:   []string{"转出", "支出", "扣款", "取款"},
	Salary:   []string{"工资", "代发工资", "奖金", "薪资"},
	Auto:     []string{"自动扣款", "代扣", "自动还款"},
	Balance:  []string{"余额"},
	Totals:   []string{"本期累计", "累计"},

	DefaultInstallment:  "一次性",
	DefaultDescription:  "其他收入",
	DefaultTransferType: "其他",
	Descriptions: []Rule{
		{Keywords: []string{"工资", "薪资"}, Label: "工资"},
		{Keywords: []string{"奖金"}, Label: "奖金"},
		{Keywords: []string{"分红", "利息", "理财"}, Label: "投资收益"},
		{Keywords: []string{"退款", "退税"}, Label: "退款"},
		{Keywords: []string{"转账"}, Label: "转账"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"保险"}, Label: "保险费"},
		{Keywords: []string{"物业"}, Label: "物业费"},
		{Keywords: []string{"贷款", "房贷"}, Label: "贷款还款"},
		{Keywords: []string{"信用卡", "还款"}, Label: "信用卡还款"},
		{Keywords: []string{"话费", "通信"}, Label: "通信费"},
		{Keywords: []string{"电费"}, Label: "电费"},
		{Keywords: []string{"燃气"}, Label: "燃气费"},
		{Keywords: []string{"水费"}, Label: "水费"},
	},
	DisplayNames: map[string]string{
		"工商银行": "中国工商银行",
		"建设银行": "中国建设银行",
		"农业银行": "中国农业银行",
	},

	AmountToken:  regexp.MustCompile(`(?:¥|￥|人民币)?\d{1,3}(?:,\d{3})*\.\d{2}(?:元)?|\d+元`),
	DateToken:    regexp.MustCompile(`(` + cnDate + `)(?:\s*(` + cnTime + `))?`),
	AccountToken: regexp.MustCompile(`尾号\s*(\d{4})`),
}

var cnDefinition = &definition{
	lexicon: cnLexicon,
	card: []*Pattern{
		newPattern("cn_card_full", FamilyCard, 0.9,
			`【(?P<issuer>[^】]+)】您尾号(?P<card>\d{4})的信用卡(?P<date>`+cnDate+`)(?P<time>`+cnTime+`)(?P<dir>消费|撤销|退款)(?:人民币)?(?P<amount>`+cnAmount+`)元[，,]?商户[:：]?(?P<merchant>[^，,。]+)(?:[，,]本期累计(?P<total>`+cnAmount+`)元)?`,
			"【招商银行】您尾号1234的信用卡10月13日15:48消费人民币128.50元，商户:星巴克，本期累计3,560.00元"),
		newPattern("cn_card_minimal", FamilyCard, 0.7,
			`(?P<issuer>\S*?银行)?信用卡(?P<dir>消费|撤销)(?P<amount>`+cnAmount+`)元`,
			"工商银行信用卡消费88.00元"),
	},
	income: []*Pattern{
		newPattern("cn_bank_full", FamilyBank, 0.9,
			`【(?P<bank>[^】]+)】您尾号(?P<account>\d{4})的账户(?P<date>`+cnDate+`)(?P<time>`+cnTime+`)(?P<dir>存入|转入|转出|支出|入账)(?P<desc>[^\d\s]{0,6}?)(?:人民币)?(?P<amount>`+cnAmount+`)元[，,]余额(?P<balance>`+cnAmount+`)元`,
			"【建设银行】您尾号5678的账户10月11日09:00存入转账人民币5,000.00元，余额12,345.67元"),
		newPattern("cn_salary", FamilySalary, 0.8,
			`【(?P<bank>[^】]+)】.*?(?P<desc>代发工资|工资|奖金)(?:收入|入账)?(?:人民币)?(?P<amount>`+cnAmount+`)元(?:[，,]余额(?P<balance>`+cnAmount+`)元)?`,
			"【工商银行】您的账户代发工资入账人民币8,000.00元，余额20,000.00元"),
		newPattern("cn_auto_transfer", FamilyAutoTransfer, 0.7,
			`(?P<desc>自动扣款|代扣|自动还款)(?P<memo>[^\d\s，,]{0,8}?)(?:人民币)?(?P<amount>`+cnAmount+`)元`,
			"自动扣款电费人民币230.00元"),
	},
	balance: []*Pattern{
		newPattern("cn_balance", FamilyBalance, 0.8,
			`【(?P<bank>[^】]+)】您尾号(?P<account>\d{4})的账户(?:当前)?余额(?:为)?(?:人民币)?(?P<balance>`+cnAmount+`)元`,
			"【农业银行】您尾号4321的账户当前余额为人民币9,876.54元"),
	},
}
