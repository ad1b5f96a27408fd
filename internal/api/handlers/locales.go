package handlers

import (
	"net/http"
	"slices"

	"github.com/dvloznov/notification-ledger/internal/api/middleware"
	"github.com/dvloznov/notification-ledger/internal/domain"
)

// LocaleSource reports supported and currently loaded locales.
type LocaleSource interface {
	Supported() []domain.Locale
	Loaded() []domain.Locale
}

// LocaleInfo describes one supported locale.
type LocaleInfo struct {
	Code   domain.Locale `json:"code"`
	Name   string        `json:"name"`
	Loaded bool          `json:"loaded"`
}

// LocalesHandler handles GET /api/locales.
type LocalesHandler struct {
	src LocaleSource
}

// NewLocalesHandler creates a new locales handler.
func NewLocalesHandler(src LocaleSource) *LocalesHandler {
	return &LocalesHandler{src: src}
}

// ListLocales handles GET /api/locales
func (h *LocalesHandler) ListLocales(w http.ResponseWriter, r *http.Request) {
	loaded := h.src.Loaded()
	var out []LocaleInfo
	for _, l := range h.src.Supported() {
		out = append(out, LocaleInfo{Code: l, Name: l.DisplayName(), Loaded: slices.Contains(loaded, l)})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"locales": out,
		"count":   len(out),
	})
}
