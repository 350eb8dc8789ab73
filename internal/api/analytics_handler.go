package api

import (
	"net/http"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// AnalyticsHandler serves usage analytics.
type AnalyticsHandler struct {
	analytics store.AnalyticsStore
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics store.AnalyticsStore) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Usage handles GET /api/analytics/usage for the authenticated user.
func (h *AnalyticsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	records, err := h.analytics.ListByUser(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to retrieve analytics", err)
		return
	}
	if records == nil {
		records = []domain.AnalyticsRecord{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AnalyticsResponse{Analytics: records})
}
