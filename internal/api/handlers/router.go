package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/notification-ledger/internal/api/middleware"
)

// Router groups the handlers served by the API.
type Router struct {
	Messages *MessagesHandler
	Events   *EventsHandler
	Jobs     *JobsHandler
	Locales  *LocalesHandler
	Now      func() time.Time
}

// Mux returns the routing table. Middleware is applied by the caller.
func (rt Router) Mux() *http.ServeMux {
	now := rt.Now
	if now == nil {
		now = time.Now
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/messages", allow(http.MethodPost, rt.Messages.ProcessMessage))
	mux.HandleFunc("/api/messages/batch", allow(http.MethodPost, rt.Messages.EnqueueBatch))

	mux.HandleFunc("/api/events", allow(http.MethodGet, rt.Events.ListEvents))
	mux.HandleFunc("/api/events/", allow(http.MethodGet, withID("/api/events/", "Event ID", rt.Events.GetEvent)))

	mux.HandleFunc("/api/jobs", allow(http.MethodGet, rt.Jobs.ListJobs))
	mux.HandleFunc("/api/jobs/", allow(http.MethodGet, withID("/api/jobs/", "Job ID", rt.Jobs.GetJob)))

	mux.HandleFunc("/api/locales", allow(http.MethodGet, rt.Locales.ListLocales))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   now().Format(time.RFC3339),
		})
	})

	return mux
}

func allow(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func withID(prefix, what string, h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			middleware.WriteError(w, http.StatusBadRequest, what+" is required")
			return
		}
		h(w, r, id)
	}
}
