// Package handlers implements HTTP request handlers for the feedwatch API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwsmith1983/feedwatch/internal/feed"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// dateLayout is the URL form of a business date.
const dateLayout = "20060102"

// StatusService is the status surface the handlers serve.
type StatusService interface {
	FeedStatus(ctx context.Context, name string, date time.Time) (types.FeedReport, error)
	FeedStatuses(ctx context.Context, names []string, date time.Time) ([]types.FeedReport, error)
	Registry() *feed.Registry
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	svc    StatusService
	pinger Pinger
	logger *slog.Logger
}

// New creates a new Handlers instance. pinger may be nil.
func New(svc StatusService, pinger Pinger) *Handlers {
	return &Handlers{
		svc:    svc,
		pinger: pinger,
		logger: slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// writeError logs the internal error and returns a sanitized JSON error to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
