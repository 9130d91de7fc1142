package api

import (
	"net/http"
)

// StatsProvider exposes operational counters for the stats endpoint:
// pipeline state, queue depth, and store occupancy.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service statistics snapshot.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
