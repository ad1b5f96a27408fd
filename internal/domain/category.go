package domain

// Category is the coarse event category assigned to a message before extraction.
type Category string

const (
	CategoryCardTransaction   Category = "CARD_TRANSACTION"
	CategoryIncomeTransaction Category = "INCOME_TRANSACTION"
	CategoryBalanceSnapshot   Category = "BALANCE_SNAPSHOT"
	CategoryUnknown           Category = "UNKNOWN"
)

// Categories lists the extractable categories in a fixed order.
var Categories = []Category{
	CategoryCardTransaction,
	CategoryIncomeTransaction,
	CategoryBalanceSnapshot,
}

// CardDirection distinguishes card approvals from cancellations.
type CardDirection string

const (
	CardApproved  CardDirection = "APPROVED"
	CardCancelled CardDirection = "CANCELLED"
)

// IncomeDirection distinguishes money in from money out of an account.
type IncomeDirection string

const (
	Deposit    IncomeDirection = "DEPOSIT"
	Withdrawal IncomeDirection = "WITHDRAWAL"
)

// IncomeKind records which grammar family produced an income transaction.
type IncomeKind string

const (
	KindBank         IncomeKind = "BANK"
	KindSalary       IncomeKind = "SALARY"
	KindAutoTransfer IncomeKind = "AUTO_TRANSFER"
)

// Strategy records how an extraction was produced.
type Strategy string

const (
	StrategyGrammar   Strategy = "GRAMMAR"
	StrategyHeuristic Strategy = "HEURISTIC"
)
