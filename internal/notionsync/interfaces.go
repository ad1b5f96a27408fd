package notionsync

import (
	"context"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/jomei/notionapi"
)

// PageStore is the Notion database events are exported to. Page IDs are
// plain strings; ListPages returns an empty cursor on the last page.
type PageStore interface {
	ListPages(ctx context.Context, cursor notionapi.Cursor) ([]notionapi.Page, notionapi.Cursor, error)
	CreatePage(ctx context.Context, properties notionapi.Properties) (string, error)
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) error
	ArchivePage(ctx context.Context, pageID string) error
}

// EventSource reads the events to export.
type EventSource interface {
	QueryEvents(ctx context.Context, f store.EventFilter) ([]*domain.Event, error)
}

// Options controls one export.
type Options struct {
	Start time.Time
	End   time.Time
	// Update rewrites pages that already exist instead of skipping them.
	Update bool
	DryRun bool
}

// Result counts what an export did, or would do in a dry run.
type Result struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}
