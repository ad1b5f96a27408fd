package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/normalize"
	"github.com/shopspring/decimal"
)

// EventRow is one row of the events table.
type EventRow struct {
	EventID     string              `bigquery:"event_id"`    // REQUIRED
	Fingerprint string              `bigquery:"fingerprint"` // REQUIRED
	RunID       bigquery.NullString `bigquery:"run_id"`

	Category   string              `bigquery:"category"` // REQUIRED
	Kind       bigquery.NullString `bigquery:"kind"`
	Locale     string              `bigquery:"locale"`   // REQUIRED
	Strategy   string              `bigquery:"strategy"` // REQUIRED
	Pattern    bigquery.NullString `bigquery:"pattern"`
	Confidence float64             `bigquery:"confidence"`

	Institution     string              `bigquery:"institution"` // REQUIRED
	InstitutionName bigquery.NullString `bigquery:"institution_name"`
	AccountRef      bigquery.NullString `bigquery:"account_ref"`
	Holder          bigquery.NullString `bigquery:"holder"`
	Direction       bigquery.NullString `bigquery:"direction"`
	Flow            string              `bigquery:"flow"` // REQUIRED
	Counterparty    bigquery.NullString `bigquery:"counterparty"`
	TransferType    bigquery.NullString `bigquery:"transfer_type"`
	InstallmentPlan bigquery.NullString `bigquery:"installment_plan"`

	Amount    *big.Rat `bigquery:"amount"`     // REQUIRED NUMERIC, major units
	NetAmount *big.Rat `bigquery:"net_amount"` // REQUIRED NUMERIC
	Balance   *big.Rat `bigquery:"balance"`    // NULLABLE NUMERIC
	Currency  string   `bigquery:"currency"`

	EventDate  civil.Date `bigquery:"event_date"` // partition column
	OccurredTS time.Time  `bigquery:"occurred_ts"`
	RawText    string     `bigquery:"raw_text"`
	CreatedTS  time.Time  `bigquery:"created_ts"`
}

// NewEventRow maps an event to its row. Minor-unit amounts become NUMERIC
// major units in the currency of the event's locale.
func NewEventRow(e *domain.Event) *EventRow {
	return &EventRow{
		EventID:         e.EventID,
		Fingerprint:     e.Fingerprint,
		RunID:           nullString(e.RunID),
		Category:        string(e.Category),
		Kind:            nullString(e.Kind),
		Locale:          string(e.Locale),
		Strategy:        string(e.Strategy),
		Pattern:         nullString(e.Pattern),
		Confidence:      e.Confidence,
		Institution:     e.Institution,
		InstitutionName: nullString(e.InstitutionName),
		AccountRef:      nullString(e.AccountRef),
		Holder:          nullString(e.Holder),
		Direction:       nullString(e.Direction),
		Flow:            string(e.Flow),
		Counterparty:    nullString(e.Counterparty),
		TransferType:    nullString(e.TransferType),
		InstallmentPlan: nullString(e.InstallmentPlan),
		Amount:          normalize.MajorUnits(e.Amount, e.Locale).Rat(),
		NetAmount:       normalize.MajorUnits(e.NetAmount, e.Locale).Rat(),
		Balance:         normalize.MajorUnits(e.Balance, e.Locale).Rat(),
		Currency:        e.Currency,
		EventDate:       civil.DateOf(e.OccurredAt),
		OccurredTS:      e.OccurredAt,
		RawText:         e.RawText,
		CreatedTS:       e.CreatedAt,
	}
}

// Event maps the row back to a domain event.
func (r *EventRow) Event() (*domain.Event, error) {
	locale := domain.Locale(r.Locale)
	amount, err := minorUnits(r.Amount, locale)
	if err != nil {
		return nil, fmt.Errorf("event %s amount: %w", r.EventID, err)
	}
	net, err := minorUnits(r.NetAmount, locale)
	if err != nil {
		return nil, fmt.Errorf("event %s net_amount: %w", r.EventID, err)
	}
	balance, err := minorUnits(r.Balance, locale)
	if err != nil {
		return nil, fmt.Errorf("event %s balance: %w", r.EventID, err)
	}

	return &domain.Event{
		EventID:         r.EventID,
		Fingerprint:     r.Fingerprint,
		RunID:           r.RunID.StringVal,
		Category:        domain.Category(r.Category),
		Kind:            r.Kind.StringVal,
		Locale:          locale,
		Strategy:        domain.Strategy(r.Strategy),
		Pattern:         r.Pattern.StringVal,
		Confidence:      r.Confidence,
		Institution:     r.Institution,
		InstitutionName: r.InstitutionName.StringVal,
		AccountRef:      r.AccountRef.StringVal,
		Holder:          r.Holder.StringVal,
		Direction:       r.Direction.StringVal,
		Flow:            domain.Flow(r.Flow),
		Counterparty:    r.Counterparty.StringVal,
		TransferType:    r.TransferType.StringVal,
		InstallmentPlan: r.InstallmentPlan.StringVal,
		Amount:          amount,
		NetAmount:       net,
		Balance:         balance,
		Currency:        r.Currency,
		OccurredAt:      r.OccurredTS,
		RawText:         r.RawText,
		CreatedAt:       r.CreatedTS,
	}, nil
}

// minorUnits reverses normalize.MajorUnits. A NULL amount is zero.
func minorUnits(v *big.Rat, locale domain.Locale) (int64, error) {
	if v == nil {
		return 0, nil
	}
	exp := int32(0)
	if f, ok := normalize.FormatFor(locale); ok {
		exp = f.Exponent
	}
	d, err := decimal.NewFromString(v.FloatString(int(exp)))
	if err != nil {
		return 0, err
	}
	return d.Shift(exp).IntPart(), nil
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
