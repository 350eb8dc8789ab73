package api

import (
	"net/http"
	"time"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
)

// Health handles GET /api/health. It does not touch dependencies.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}
