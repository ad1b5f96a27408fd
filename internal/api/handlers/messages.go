// Package handlers implements the HTTP endpoints of the ledger API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dvloznov/notification-ledger/internal/api/middleware"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/ingest"
	"github.com/dvloznov/notification-ledger/internal/jobs"
	"github.com/dvloznov/notification-ledger/internal/logger"
)

const (
	maxMessageBytes = 64 << 10
	maxBatchBytes   = 8 << 20
)

// MessageIngester ingests single messages.
type MessageIngester interface {
	Ingest(ctx context.Context, msg ingest.RawMessage) (ingest.Receipt, error)
}

// MessagesHandler handles message ingestion endpoints.
type MessagesHandler struct {
	ingester  MessageIngester
	publisher jobs.Publisher
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(ingester MessageIngester, publisher jobs.Publisher) *MessagesHandler {
	return &MessagesHandler{
		ingester:  ingester,
		publisher: publisher,
	}
}

type messageRequest struct {
	Text          string `json:"text"`
	LocaleHint    string `json:"locale_hint"`
	WindowMinutes int    `json:"window_minutes"`
}

type batchRequest struct {
	Text          string `json:"text"`
	GCSURI        string `json:"gcs_uri"`
	LocaleHint    string `json:"locale_hint"`
	WindowMinutes int    `json:"window_minutes"`
}

// ProcessMessage handles POST /api/messages. Rejections and duplicates are
// normal outcomes and return 200.
func (h *MessagesHandler) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.WindowMinutes < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "window_minutes must not be negative")
		return
	}

	receipt, err := h.ingester.Ingest(r.Context(), ingest.RawMessage{
		Text:          req.Text,
		LocaleHint:    hintOf(req.LocaleHint),
		WindowMinutes: req.WindowMinutes,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to store event")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store event")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, receipt)
}

// EnqueueBatch handles POST /api/messages/batch. The batch is either inline
// text or an archived gs:// object and is processed asynchronously.
func (h *MessagesHandler) EnqueueBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	hasText := strings.TrimSpace(req.Text) != ""
	if hasText == (req.GCSURI != "") {
		middleware.WriteError(w, http.StatusBadRequest, "exactly one of text and gcs_uri is required")
		return
	}
	if req.GCSURI != "" && !strings.HasPrefix(req.GCSURI, "gs://") {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must start with gs://")
		return
	}

	job := &jobs.IngestBatchJob{
		Text:          req.Text,
		GCSURI:        req.GCSURI,
		LocaleHint:    hintOf(req.LocaleHint),
		WindowMinutes: req.WindowMinutes,
	}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue batch job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue batch job")
		return
	}
	// The worker owns job from here on; only its ID is read.
	jobID := job.JobID

	log.Info().Str("job_id", jobID).Msg("Batch job enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": string(jobs.JobStatusPending),
	})
}

// hintOf normalizes a locale hint. Unsupported codes pass through and are
// ignored by the pipeline.
func hintOf(s string) domain.Locale {
	return domain.Locale(strings.ToUpper(strings.TrimSpace(s)))
}
