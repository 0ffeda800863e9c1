package api

import (
	"net/http"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/service"
)

// StatsHandler serves task statistics.
type StatsHandler struct {
	stats service.StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats service.StatsService) (*StatsHandler, error) {
	if stats == nil {
		return nil, domain.NewValidationError("stats", "cannot be nil")
	}
	return &StatsHandler{stats: stats}, nil
}

// Get handles GET /stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.TaskStats(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Health handles GET /health and GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "OK"})
}
