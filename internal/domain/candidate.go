package domain

import "time"

// Candidate is the category-specific field bag produced by an extraction.
// The set of implementations is closed: CardTransaction, IncomeTransaction
// and BalanceSnapshot.
type Candidate interface {
	// Category returns the event category the candidate belongs to.
	Category() Category

	// Timestamp returns the time the event occurred (or the snapshot time).
	Timestamp() time.Time

	// Valid reports whether the candidate satisfies the extraction invariants.
	Valid() bool

	candidate()
}

// CardTransaction is a card approval or cancellation notification.
type CardTransaction struct {
	Issuer          string        `json:"issuer"`
	MaskedCardID    string        `json:"masked_card_id"`
	Direction       CardDirection `json:"direction"`
	MaskedHolder    string        `json:"masked_holder"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	InstallmentPlan string        `json:"installment_plan"`
	Merchant        string        `json:"merchant"`
	OccurredAt      time.Time     `json:"occurred_at"`
	RunningTotal    int64         `json:"running_total"`
}

func (c *CardTransaction) Category() Category   { return CategoryCardTransaction }
func (c *CardTransaction) Timestamp() time.Time { return c.OccurredAt }
func (c *CardTransaction) candidate()           {}

// Valid implements Candidate.
func (c *CardTransaction) Valid() bool {
	if c.Amount < 0 || c.RunningTotal < 0 {
		return false
	}
	return c.Direction == CardApproved || c.Direction == CardCancelled
}

// IncomeTransaction is a deposit or withdrawal on a bank account.
// Salary and automatic transfers are income transactions with a Kind.
type IncomeTransaction struct {
	Institution     string          `json:"institution"`
	MaskedAccountID string          `json:"masked_account_id"`
	Direction       IncomeDirection `json:"direction"`
	Kind            IncomeKind      `json:"kind"`
	Description     string          `json:"description"`
	TransferType    string          `json:"transfer_type,omitempty"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	BalanceAfter    int64           `json:"balance_after"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func (t *IncomeTransaction) Category() Category   { return CategoryIncomeTransaction }
func (t *IncomeTransaction) Timestamp() time.Time { return t.OccurredAt }
func (t *IncomeTransaction) candidate()           {}

// Valid implements Candidate.
func (t *IncomeTransaction) Valid() bool {
	if t.Amount < 0 || t.BalanceAfter < 0 {
		return false
	}
	if t.Direction != Deposit && t.Direction != Withdrawal {
		return false
	}
	switch t.Kind {
	case KindBank, KindSalary, KindAutoTransfer:
		return true
	}
	return false
}

// BalanceSnapshot is a balance-only notification.
type BalanceSnapshot struct {
	Institution     string    `json:"institution"`
	MaskedAccountID string    `json:"masked_account_id"`
	Balance         int64     `json:"balance"`
	Currency        string    `json:"currency"`
	AsOf            time.Time `json:"as_of"`
}

func (b *BalanceSnapshot) Category() Category   { return CategoryBalanceSnapshot }
func (b *BalanceSnapshot) Timestamp() time.Time { return b.AsOf }
func (b *BalanceSnapshot) candidate()           {}

// Valid implements Candidate.
func (b *BalanceSnapshot) Valid() bool {
	return b.Balance >= 0
}

var (
	_ Candidate = (*CardTransaction)(nil)
	_ Candidate = (*IncomeTransaction)(nil)
	_ Candidate = (*BalanceSnapshot)(nil)
)
