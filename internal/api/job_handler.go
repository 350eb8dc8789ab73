package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
	"github.com/Script-GH/Ai-tutor/internal/task"
)

// JobQueue is the part of the job runner used by handlers.
type JobQueue interface {
	Enqueue(ctx context.Context, kind string, ownerID uuid.UUID, payload json.RawMessage) (uuid.UUID, error)
	Status(ctx context.Context, id uuid.UUID) (*task.Job, error)
}

// JobHandler starts background jobs and reports their state.
type JobHandler struct {
	jobs JobQueue
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs JobQueue) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GenerateTest handles POST /api/generate/test. It returns as soon as the
// job is recorded; progress is read from GET /api/jobs/{id} or the
// WebSocket channel.
func (h *JobHandler) GenerateTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GenerateTestRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	payload, err := json.Marshal(task.GenerateTestPayload{
		SyllabusID: req.SyllabusID,
		TestType:   req.TestType,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Test generation failed", err)
		return
	}

	jobID, err := h.jobs.Enqueue(r.Context(), task.KindGenerateTest, userID, payload)
	if err != nil {
		HandleAPIError(w, r, err, "Test generation failed")
		return
	}

	logger.FromContext(r.Context()).Info("test generation queued", "job_id", jobID)
	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskAcceptedResponse{
		TaskID:  jobID,
		Message: "Test generation started",
	})
}

// GetJob handles GET /api/jobs/{id}. Jobs owned by other users, and system
// jobs, are reported as not found.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.jobs.Status(r.Context(), jobID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve job")
		return
	}
	if job.OwnerID != userID {
		HandleAPIError(w, r, store.ErrJobNotFound, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}
