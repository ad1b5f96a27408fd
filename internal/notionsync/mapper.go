package notionsync

import (
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/normalize"
	"github.com/jomei/notionapi"
)

// Property names of the events database.
const (
	PropEventID      = "Event ID"
	PropDate         = "Date"
	PropCategory     = "Category"
	PropLocale       = "Locale"
	PropInstitution  = "Institution"
	PropAccount      = "Account"
	PropCounterparty = "Counterparty"
	PropAmount       = "Amount"
	PropNetAmount    = "Net Amount"
	PropBalance      = "Balance"
	PropCurrency     = "Currency"
	PropFlow         = "Flow"
	PropKind         = "Kind"
	PropStrategy     = "Strategy"
	PropConfidence   = "Confidence"
	PropFingerprint  = "Fingerprint"
)

// EventToNotionProperties converts an event to Notion properties. Amounts
// are written in major units of the event's currency.
func EventToNotionProperties(e *domain.Event) notionapi.Properties {
	occurred := notionapi.Date(e.OccurredAt)

	props := notionapi.Properties{
		PropEventID: notionapi.TitleProperty{
			Title: richText(e.EventID),
		},
		PropDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &occurred},
		},
		PropCategory:   notionapi.SelectProperty{Select: notionapi.Option{Name: string(e.Category)}},
		PropLocale:     notionapi.SelectProperty{Select: notionapi.Option{Name: string(e.Locale)}},
		PropStrategy:   notionapi.SelectProperty{Select: notionapi.Option{Name: string(e.Strategy)}},
		PropFlow:       notionapi.SelectProperty{Select: notionapi.Option{Name: string(e.Flow)}},
		PropAmount:     notionapi.NumberProperty{Number: majorUnits(e.Amount, e.Locale)},
		PropNetAmount:  notionapi.NumberProperty{Number: majorUnits(e.NetAmount, e.Locale)},
		PropBalance:    notionapi.NumberProperty{Number: majorUnits(e.Balance, e.Locale)},
		PropConfidence: notionapi.NumberProperty{Number: e.Confidence},
		PropFingerprint: notionapi.RichTextProperty{
			RichText: richText(e.Fingerprint),
		},
	}

	institution := e.Institution
	if e.InstitutionName != "" {
		institution = e.InstitutionName
	}
	if institution != "" {
		props[PropInstitution] = notionapi.RichTextProperty{RichText: richText(institution)}
	}
	if e.AccountRef != "" {
		props[PropAccount] = notionapi.RichTextProperty{RichText: richText(e.AccountRef)}
	}
	if e.Counterparty != "" {
		props[PropCounterparty] = notionapi.RichTextProperty{RichText: richText(e.Counterparty)}
	}
	if e.Currency != "" {
		props[PropCurrency] = notionapi.SelectProperty{Select: notionapi.Option{Name: e.Currency}}
	}
	if e.Kind != "" {
		props[PropKind] = notionapi.SelectProperty{Select: notionapi.Option{Name: e.Kind}}
	}

	return props
}

// extractEventID returns the Event ID title of a page, or "" if it has none.
func extractEventID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropEventID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

func majorUnits(minor int64, locale domain.Locale) float64 {
	f, _ := normalize.MajorUnits(minor, locale).Float64()
	return f
}
