package grammar

import (
	"regexp"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	krAmount  = `\d{1,3}(?:,\d{3})*`
	krDate    = `\d{1,2}/\d{1,2}`
	krTime    = `\d{1,2}:\d{2}`
	krAccount = `\d{3}-\*{3}-\d{6}`
)

var krLexicon = &Lexicon{
	Locale: domain.LocaleKR,
	Gate:   []string{"카드", "은행", "입금", "출금", "승인", "취소", "잔액", "급여", "자동이체"},

	CardIssuers: []string{
		"신한카드", "삼성카드", "현대카드", "KB국민카드", "국민카드", "롯데카드",
		"우리카드", "하나카드", "BC카드", "비씨카드", "NH농협카드", "농협카드",
	},
	Institutions: []string{
		"신한은행", "KB국민은행", "국민은행", "우리은행", "하나은행", "NH농협은행", "농협은행",
		"IBK기업은행", "기업은행", "카카오뱅크", "토스뱅크", "케이뱅크", "새마을금고",
		"신한", "국민", "우리", "하나", "농협", "기업",
	},

	Approve:  []string{"승인"},
	Cancel:   []string{"취소", "승인취소"},
	Deposits: []string{"입금"},
	Debits:   []string{"출금", "이체", "송금"},
	Salary:   []string{"급여", "월급", "연봉", "상여", "상여금", "보너스"},
	Auto:     []string{"자동이체", "정기이체", "자동출금", "자동납부"},
	Balance:  []string{"잔액"},
	Totals:   []string{"누적"},

	DefaultInstallment:  "일시불",
	DefaultDescription:  "기타수입",
	DefaultTransferType: "기타",
	Descriptions: []Rule{
		{Keywords: []string{"급여", "월급", "연봉"}, Label: "급여"},
		{Keywords: []string{"보너스", "상여"}, Label: "보너스"},
		{Keywords: []string{"수당"}, Label: "수당"},
		{Keywords: []string{"부업", "알바"}, Label: "부업수입"},
		{Keywords: []string{"사업"}, Label: "사업수입"},
		{Keywords: []string{"투자", "배당"}, Label: "투자수익"},
		{Keywords: []string{"환급", "환불"}, Label: "환급"},
		{Keywords: []string{"입금"}, Label: "입금"},
		{Keywords: []string{"출금"}, Label: "출금"},
	},
	TransferTypes: []Rule{
		{Keywords: []string{"보험"}, Label: "보험료"},
		{Keywords: []string{"관리비"}, Label: "관리비"},
		{Keywords: []string{"적금"}, Label: "적금"},
		{Keywords: []string{"대출"}, Label: "대출상환"},
		{Keywords: []string{"카드"}, Label: "카드대금"},
		{Keywords: []string{"통신"}, Label: "통신비"},
		{Keywords: []string{"전기"}, Label: "전기요금"},
		{Keywords: []string{"가스"}, Label: "가스요금"},
		{Keywords: []string{"수도"}, Label: "수도요금"},
	},
	DisplayNames: map[string]string{
		"신한": "신한은행",
		"국민": "KB국민은행",
		"우리": "우리은행",
		"하나": "하나은행",
		"농협": "NH농협은행",
		"기업": "IBK기업은행",
	},

	AmountToken:      regexp.MustCompile(`(?:₩\s?)?\d{1,3}(?:,\d{3})+(?:\s?원)?|\d+\s?원`),
	DateToken:        regexp.MustCompile(`(` + krDate + `)(?:\s*(` + krTime + `))?`),
	AccountToken:     regexp.MustCompile(`(\d{2,6}-[\d*]{2,6}-[\d*]{2,8})`),
	InstallmentToken: regexp.MustCompile(`일시불|\d+개월`),
}

var krDefinition = &definition{
	lexicon: krLexicon,
	card: []*Pattern{
		newPattern("kr_card_full", FamilyCard, 0.9,
			`(?P<issuer>[가-힣]+카드)\((?P<card>\d+)\)(?P<dir>승인|취소)\s+(?P<holder>[가-힣*]+)\s+(?P<amount>`+krAmount+`)원\((?P<plan>일시불|\d+개월)\)\s*(?P<date>`+krDate+`)\s*(?P<time>`+krTime+`)\s+(?P<merchant>[가-힣\s]+)\s+누적(?P<total>`+krAmount+`)원?`,
			"신한카드(1054)승인 신*진 98,700원(일시불)10/13 15:48 가톨릭대병원 누적1,960,854원"),
		newPattern("kr_card_compact", FamilyCard, 0.9,
			`(?P<issuer>[가-힣]+카드)\((?P<card>\d+)\)(?P<dir>승인|취소)\s*(?P<holder>[가-힣*]+?)\s*(?P<amount>`+krAmount+`)원\((?P<plan>일시불|\d+개월)\)\s*(?P<date>`+krDate+`)\s*(?P<time>`+krTime+`)\s*(?P<merchant>[가-힣]+(?:\s[가-힣]+)*)\s*누적(?P<total>`+krAmount+`)원?`,
			"삼성카드(7733)취소 김*수 15,000원(3개월)10/12 09:30 스타벅스누적512,300원"),
		newPattern("kr_card_no_installment", FamilyCard, 0.8,
			`(?P<issuer>[가-힣]+카드)\((?P<card>\d+)\)(?P<dir>승인|취소)\s+(?P<holder>[가-힣*]+)\s+(?P<amount>`+krAmount+`)원\s+(?P<date>`+krDate+`)\s*(?P<time>`+krTime+`)\s+(?P<merchant>[가-힣㈜()\s]+?)(?:\s+누적(?P<total>`+krAmount+`)원?|\s*$)`,
			"우리카드(5521)승인 이*영 32,500원 10/14 12:10 김밥천국 누적845,000원"),
		newPattern("kr_card_simple", FamilyCard, 0.7,
			`(?P<issuer>[가-힣]+카드)\s+(?P<dir>승인|취소)\s+(?P<amount>`+krAmount+`)원\s+(?P<merchant>[가-힣㈜()\s]+?)\s+(?P<date>`+krDate+`)\s*(?P<time>`+krTime+`)(?:\s+누적(?P<total>`+krAmount+`)원?)?`,
			"현대카드 승인 50,000원 이마트 10/13 18:20 누적1,200,000원"),
	},
	income: []*Pattern{
		newPattern("kr_salary_full", FamilySalary, 0.9,
			`(?P<bank>[가-힣]+)\s+(?P<date>`+krDate+`)\s+(?P<time>`+krTime+`)\s+(?P<account>`+krAccount+`)\s+(?P<dir>입금)\s+(?P<desc>급여|월급|상여금|상여|보너스)\s+(?P<amount>`+krAmount+`)원?\s+잔액\s+(?P<balance>`+krAmount+`)원?`,
			"신한 10/11 21:54 100-***-159993 입금 급여 2,500,000 잔액 3,265,147 급여"),
		newPattern("kr_bank_full", FamilyBank, 0.9,
			`(?P<bank>[가-힣]+)\s+(?P<date>`+krDate+`)\s+(?P<time>`+krTime+`)\s+(?P<account>`+krAccount+`)\s+(?P<dir>입금|출금)\s+(?P<desc>[가-힣]+)\s+(?P<amount>`+krAmount+`)원?\s+잔액\s+(?P<balance>`+krAmount+`)원?`,
			"국민 10/12 10:05 123-***-456789 출금 관리비 150,000 잔액 2,850,000"),
		newPattern("kr_bank_no_account", FamilyBank, 0.8,
			`(?P<bank>[가-힣]+)\s+(?P<date>`+krDate+`)\s+(?P<time>`+krTime+`)\s+(?P<dir>입금|출금)\s+(?P<desc>[가-힣]+)\s+(?P<amount>`+krAmount+`)원?\s+잔액\s+(?P<balance>`+krAmount+`)원?`,
			"우리 10/12 11:30 입금 홍길동 300,000원 잔액 1,300,000원"),
		newPattern("kr_auto_transfer_named", FamilyAutoTransfer, 0.8,
			`\[?(?P<bank>[가-힣]+(?:은행|금고))\]?\s+(?P<desc>자동이체|정기이체|자동납부)\s+(?P<memo>[가-힣]+)\s+(?P<amount>`+krAmount+`)원(?:\s+잔액\s+(?P<balance>`+krAmount+`)원?)?`,
			"[하나은행] 자동이체 보험료 89,000원 잔액 1,024,000원"),
		newPattern("kr_bank_bracket", FamilyBank, 0.7,
			`\[(?P<bank>[가-힣]+은행)\]\s+(?P<dir>입금|출금)\s+(?P<amount>`+krAmount+`)원\s+잔액\s+(?P<balance>`+krAmount+`)원`,
			"[국민은행] 입금 500,000원 잔액 2,000,000원"),
		newPattern("kr_bank_minimal", FamilyBank, 0.7,
			`(?P<bank>[가-힣]+은행)\s+(?P<dir>입금|출금)\s+(?P<desc>[가-힣]+)\s+(?P<amount>`+krAmount+`)원?\s+잔액\s+(?P<balance>`+krAmount+`)원?`,
			"농협은행 출금 카드대금 420,000 잔액 880,000"),
		newPattern("kr_auto_transfer_minimal", FamilyAutoTransfer, 0.7,
			`(?P<desc>자동이체|정기이체|자동출금)\s+(?:출금\s+)?(?P<amount>`+krAmount+`)원`,
			"자동이체 출금 55,000원"),
		newPattern("kr_salary_minimal", FamilySalary, 0.7,
			`(?P<desc>급여|월급|상여금)\s+입금\s+(?P<amount>`+krAmount+`)원`,
			"급여 입금 3,200,000원"),
	},
	balance: []*Pattern{
		newPattern("kr_balance_full", FamilyBalance, 0.9,
			`(?P<bank>[가-힣]+)\s+(?P<date>`+krDate+`)\s+(?P<time>`+krTime+`)\s+(?P<account>`+krAccount+`)\s+잔액\s+(?P<balance>`+krAmount+`)원?`,
			"신한 10/13 08:00 110-***-123456 잔액 4,500,000원"),
		newPattern("kr_balance_bracket", FamilyBalance, 0.8,
			`\[(?P<bank>[가-힣]+(?:은행|금고))\]\s*(?:(?P<account>\d{3}-[\d*]{2,6}-[\d*]{3,6})\s+)?잔액\s+(?P<balance>`+krAmount+`)원?`,
			"[기업은행] 010-**-123456 잔액 760,000원"),
		newPattern("kr_balance_minimal", FamilyBalance, 0.7,
			`(?P<bank>[가-힣]+은행)\s+잔액\s+(?P<balance>`+krAmount+`)원?`,
			"우리은행 잔액 1,234,567원"),
	},
}
