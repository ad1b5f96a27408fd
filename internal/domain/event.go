package domain

import (
	"time"

	"github.com/google/uuid"
)

// Flow is the money direction of a persisted event relative to the account holder.
type Flow string

const (
	FlowIn   Flow = "IN"
	FlowOut  Flow = "OUT"
	FlowNone Flow = "NONE"
)

// Event is the category-tagged, flattened record handed to the persistence layer.
// It is a domain struct, not a storage row; repositories map it to their schema.
type Event struct {
	EventID     string `json:"event_id"`
	Fingerprint string `json:"fingerprint"`
	// RunID links events ingested by the same batch run.
	RunID string `json:"run_id,omitempty"`

	Category   Category `json:"category"`
	Kind       string   `json:"kind,omitempty"`
	Locale     Locale   `json:"locale"`
	Strategy   Strategy `json:"strategy"`
	Pattern    string   `json:"pattern,omitempty"`
	Confidence float64  `json:"confidence"`

	Institution     string `json:"institution"`
	InstitutionName string `json:"institution_name,omitempty"`
	AccountRef      string `json:"account_ref"`
	Holder          string `json:"holder,omitempty"`
	Direction       string `json:"direction,omitempty"`
	Flow            Flow   `json:"flow"`
	Counterparty    string `json:"counterparty,omitempty"`
	TransferType    string `json:"transfer_type,omitempty"`
	InstallmentPlan string `json:"installment_plan,omitempty"`

	// Amount is always >= 0 in minor units. NetAmount is the signed value for
	// downstream consumers: card cancellations are negative, inflows positive
	// and outflows positive with Flow=OUT.
	Amount    int64  `json:"amount"`
	NetAmount int64  `json:"net_amount"`
	Balance   int64  `json:"balance"`
	Currency  string `json:"currency"`

	OccurredAt time.Time `json:"occurred_at"`
	RawText    string    `json:"raw_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEvent flattens an accepted extraction into an Event.
func NewEvent(ext *Extraction, raw, fingerprint string, now time.Time) *Event {
	ev := &Event{
		EventID:     uuid.NewString(),
		Fingerprint: fingerprint,
		Category:    ext.Category(),
		Locale:      ext.SourceLocale,
		Strategy:    ext.Strategy,
		Pattern:     ext.Pattern,
		Confidence:  ext.Confidence,
		RawText:     raw,
		CreatedAt:   now,
		Flow:        FlowNone,
	}

	switch c := ext.Candidate.(type) {
	case *CardTransaction:
		ev.Institution = c.Issuer
		ev.AccountRef = c.MaskedCardID
		ev.Holder = c.MaskedHolder
		ev.Direction = string(c.Direction)
		ev.Counterparty = c.Merchant
		ev.InstallmentPlan = c.InstallmentPlan
		ev.Amount = c.Amount
		ev.Balance = c.RunningTotal
		ev.Currency = c.Currency
		ev.OccurredAt = c.OccurredAt
		ev.Flow = FlowOut
		ev.NetAmount = c.Amount
		if c.Direction == CardCancelled {
			ev.Flow = FlowIn
			ev.NetAmount = -c.Amount
		}
	case *IncomeTransaction:
		ev.Kind = string(c.Kind)
		ev.Institution = c.Institution
		ev.AccountRef = c.MaskedAccountID
		ev.Direction = string(c.Direction)
		ev.Counterparty = c.Description
		ev.TransferType = c.TransferType
		ev.Amount = c.Amount
		ev.NetAmount = c.Amount
		ev.Balance = c.BalanceAfter
		ev.Currency = c.Currency
		ev.OccurredAt = c.OccurredAt
		ev.Flow = FlowIn
		if c.Direction == Withdrawal {
			ev.Flow = FlowOut
		}
	case *BalanceSnapshot:
		ev.Institution = c.Institution
		ev.AccountRef = c.MaskedAccountID
		ev.Balance = c.Balance
		ev.Currency = c.Currency
		ev.OccurredAt = c.AsOf
	}

	return ev
}
