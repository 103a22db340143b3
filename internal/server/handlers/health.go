package handlers

import "net/http"

// Health returns the server health status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Warn("store ping failed", "error", err)
			status = "degraded"
		}
	}
	h.writeJSON(w, map[string]string{"status": status})
}
