package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwsmith1983/feedwatch/internal/feed"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

type feedSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	ETA      string `json:"eta"`
}

// statusEntry is one feed in a dated status listing.
type statusEntry struct {
	Status    types.FeedStatus `json:"status"`
	AsOf      string           `json:"asofdate"`
	NormalETA string           `json:"normalEta"`
	Category  string           `json:"category"`
	Failure   string           `json:"failure,omitempty"`
}

func toEntry(r types.FeedReport) statusEntry {
	return statusEntry{
		Status:    r.Status,
		AsOf:      r.AsOf.Format("2006-01-02T15:04:05.000"),
		NormalETA: r.NormalETA.Format("2006-01-02T15:04:05"),
		Category:  r.Category,
		Failure:   r.Failure,
	}
}

// ListFeeds returns every registered feed.
func (h *Handlers) ListFeeds(w http.ResponseWriter, _ *http.Request) {
	descs := h.svc.Registry().List()
	out := make([]feedSummary, len(descs))
	for i, d := range descs {
		out[i] = feedSummary{Name: d.Name, Category: d.Category, ETA: d.ETA}
	}
	h.writeJSON(w, out)
}

// FeedStatuses returns the status of every feed for the {date} URL param.
func (h *Handlers) FeedStatuses(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")
	date, err := parseDate(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q: want YYYYMMDD", raw), nil)
		return
	}

	reports, err := h.svc.FeedStatuses(r.Context(), nil, date)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to evaluate feeds", err)
		return
	}

	out := make(map[string]statusEntry, len(reports))
	for _, rep := range reports {
		out[rep.Feed] = toEntry(rep)
	}
	h.writeJSON(w, out)
}

// FeedStatus returns one feed's status for the {date} URL param.
func (h *Handlers) FeedStatus(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")
	date, err := parseDate(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q: want YYYYMMDD", raw), nil)
		return
	}
	name := chi.URLParam(r, "feed")

	report, err := h.svc.FeedStatus(r.Context(), name, date)
	if errors.Is(err, feed.ErrUnsupportedFeed) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("unsupported feed %q", name), nil)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to evaluate feed", err)
		return
	}
	h.writeJSON(w, map[string]statusEntry{report.Feed: toEntry(report)})
}
