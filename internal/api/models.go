package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/store"
	"github.com/Script-GH/Ai-tutor/internal/task"
)

// RegisterRequest defines the payload for the user registration endpoint.
// Format rules are enforced by the credential service.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned with 201 Created.
type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"user_id"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the access token and the authenticated user.
type LoginResponse struct {
	Status      string      `json:"status"`
	AccessToken string      `json:"access_token"`
	ExpiresAt   string      `json:"expires_at"`
	User        UserSummary `json:"user"`
}

// UserSummary identifies a user in responses.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// LoginErrorResponse keeps the status envelope on failed logins.
type LoginErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// UploadResponse is returned after a syllabus is stored.
type UploadResponse struct {
	Message    string    `json:"message"`
	FileID     string    `json:"file_id"`
	SyllabusID uuid.UUID `json:"syllabus_id"`
}

// GenerateTestRequest is the body of a test generation request. It is
// handed to the job unchanged; the syllabus is checked by the worker.
type GenerateTestRequest struct {
	SyllabusID string `json:"syllabus_id"`
	TestType   string `json:"test_type,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// TaskAcceptedResponse is returned with 202 Accepted.
type TaskAcceptedResponse struct {
	TaskID  uuid.UUID `json:"task_id"`
	Message string    `json:"message"`
}

// JobResponse is the client view of a job.
type JobResponse struct {
	TaskID     uuid.UUID       `json:"task_id"`
	Kind       string          `json:"kind"`
	State      task.State      `json:"state"`
	Done       bool            `json:"done"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

func jobToResponse(job *task.Job) JobResponse {
	return JobResponse{
		TaskID:     job.ID,
		Kind:       job.Kind,
		State:      job.State,
		Done:       job.State.Terminal(),
		Result:     job.Result,
		Error:      job.ErrorMessage,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
}

// AnalyticsResponse wraps the caller's analytics records.
type AnalyticsResponse struct {
	Analytics []domain.AnalyticsRecord `json:"analytics"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
