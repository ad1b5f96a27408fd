package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/notification-ledger/internal/api/middleware"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/store"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
	dateLayout        = "2006-01-02"
)

// EventsHandler handles stored event endpoints.
type EventsHandler struct {
	repo store.EventRepository
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(repo store.EventRepository) *EventsHandler {
	return &EventsHandler{repo: repo}
}

// ListEvents handles GET /api/events?category=&locale=&start_date=&end_date=&limit=
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	filter, err := parseEventFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.repo.QueryEvents(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query events")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query events")
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// GetEvent handles GET /api/events/{id}
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	event, err := h.repo.GetEvent(r.Context(), eventID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("event_id", eventID).Msg("Failed to get event")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, event)
}

func parseEventFilter(r *http.Request) (store.EventFilter, error) {
	query := r.URL.Query()
	f := store.EventFilter{Limit: defaultEventLimit}

	if c := query.Get("category"); c != "" {
		f.Category = domain.Category(strings.ToUpper(c))
		if !validCategory(f.Category) {
			return f, errors.New("Invalid category")
		}
	}
	if l := query.Get("locale"); l != "" {
		loc, err := domain.ParseLocale(l)
		if err != nil {
			return f, errors.New("Invalid locale")
		}
		f.Locale = loc
	}

	var err error
	if s := query.Get("start_date"); s != "" {
		if f.Start, err = time.Parse(dateLayout, s); err != nil {
			return f, errors.New("Invalid start_date format")
		}
	}
	if s := query.Get("end_date"); s != "" {
		if f.End, err = time.Parse(dateLayout, s); err != nil {
			return f, errors.New("Invalid end_date format")
		}
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, errors.New("end_date is before start_date")
	}

	if s := query.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return f, errors.New("Invalid limit")
		}
		f.Limit = min(n, maxEventLimit)
	}
	return f, nil
}

func validCategory(c domain.Category) bool {
	for _, known := range domain.Categories {
		if c == known {
			return true
		}
	}
	return false
}
