// Package notionsync exports accepted events to a Notion database. Pages
// are keyed by their Event ID title, so repeated exports do not duplicate.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/jomei/notionapi"
)

// BatchSize is the number of events processed between progress logs.
const BatchSize = 100

const pageSize = 100

// SyncEvents exports the events in [opts.Start, opts.End] to the Notion
// database. Events that already have a page are skipped, or rewritten when
// opts.Update is set. Extra pages carrying the same Event ID are archived.
// Failures on single pages are logged and counted, not returned.
func SyncEvents(ctx context.Context, src EventSource, notion PageStore, opts Options) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	log.Info().
		Time("start_date", opts.Start).
		Time("end_date", opts.End).
		Bool("dry_run", opts.DryRun).
		Bool("update", opts.Update).
		Msg("Starting event sync to Notion")

	events, err := src.QueryEvents(ctx, store.EventFilter{Start: opts.Start, End: opts.End})
	if err != nil {
		return res, fmt.Errorf("SyncEvents: querying events: %w", err)
	}
	log.Info().Int("event_count", len(events)).Msg("Retrieved events")

	pages, err := listAllPages(ctx, notion)
	if err != nil {
		return res, fmt.Errorf("SyncEvents: %w", err)
	}
	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		eventID := extractEventID(page)
		if eventID == "" {
			continue
		}
		if _, dup := existing[eventID]; !dup {
			existing[eventID] = string(page.ID)
			continue
		}

		if opts.DryRun {
			log.Info().Str("event_id", eventID).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive duplicate Notion page")
			res.Archived++
			continue
		}
		if err := notion.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("event_id", eventID).Str("page_id", string(page.ID)).Msg("Failed to archive duplicate Notion page")
			res.Failed++
			continue
		}
		res.Archived++
	}

	for i, e := range events {
		if i > 0 && i%BatchSize == 0 {
			log.Info().Int("processed", i).Int("total", len(events)).Msg("Sync progress")
		}

		pageID, found := existing[e.EventID]
		switch {
		case found && !opts.Update:
			res.Skipped++

		case opts.DryRun:
			if found {
				log.Info().Str("event_id", e.EventID).Str("page_id", pageID).Msg("[DRY RUN] Would update existing Notion page")
				res.Updated++
			} else {
				log.Info().Str("event_id", e.EventID).Msg("[DRY RUN] Would create new Notion page")
				res.Created++
			}

		case found:
			if err := notion.UpdatePage(ctx, pageID, EventToNotionProperties(e)); err != nil {
				log.Warn().Err(err).Str("event_id", e.EventID).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++

		default:
			newID, err := notion.CreatePage(ctx, EventToNotionProperties(e))
			if err != nil {
				log.Warn().Err(err).Str("event_id", e.EventID).Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			log.Debug().Str("event_id", e.EventID).Str("page_id", newID).Msg("Created Notion page")
			existing[e.EventID] = newID
			res.Created++
		}
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Int("total", len(events)).
		Msg("Event sync completed")

	return res, nil
}

// listAllPages returns every page of the database, following cursors.
func listAllPages(ctx context.Context, notion PageStore) ([]notionapi.Page, error) {
	var (
		all    []notionapi.Page
		cursor notionapi.Cursor
	)
	for {
		pages, next, err := notion.ListPages(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("listAllPages: %w", err)
		}
		all = append(all, pages...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

// Database is a PageStore backed by the Notion API.
type Database struct {
	api *notionapi.Client
	id  notionapi.DatabaseID
}

// NewDatabase binds an API token to one database.
func NewDatabase(token, databaseID string) *Database {
	return &Database{
		api: notionapi.NewClient(notionapi.Token(token)),
		id:  notionapi.DatabaseID(databaseID),
	}
}

func (d *Database) ListPages(ctx context.Context, cursor notionapi.Cursor) ([]notionapi.Page, notionapi.Cursor, error) {
	resp, err := d.api.Database.Query(ctx, d.id, &notionapi.DatabaseQueryRequest{
		PageSize:    pageSize,
		StartCursor: cursor,
	})
	if err != nil {
		return nil, "", fmt.Errorf("ListPages: %w", err)
	}
	if !resp.HasMore {
		return resp.Results, "", nil
	}
	return resp.Results, resp.NextCursor, nil
}

func (d *Database) CreatePage(ctx context.Context, properties notionapi.Properties) (string, error) {
	page, err := d.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: d.id},
		Properties: properties,
	})
	if err != nil {
		return "", fmt.Errorf("CreatePage: %w", err)
	}
	return string(page.ID), nil
}

func (d *Database) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) error {
	if _, err := d.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: properties}); err != nil {
		return fmt.Errorf("UpdatePage %s: %w", pageID, err)
	}
	return nil
}

// ArchivePage moves a page to the trash; Notion keeps it restorable.
func (d *Database) ArchivePage(ctx context.Context, pageID string) error {
	if _, err := d.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Archived: true}); err != nil {
		return fmt.Errorf("ArchivePage %s: %w", pageID, err)
	}
	return nil
}

var _ PageStore = (*Database)(nil)
