package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of a job.
type State string

// Possible job states. SUCCESS and FAILURE are terminal.
const (
	StatePending    State = "PENDING"
	StateProcessing State = "PROCESSING"
	StateSuccess    State = "SUCCESS"
	StateFailure    State = "FAILURE"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// Job kinds known to the server.
const (
	KindGenerateTest   = "generate_test"
	KindCleanupSyllabi = "cleanup_syllabi"
)

// Job is a unit of background work and its recorded outcome.
type Job struct {
	ID           uuid.UUID       `json:"task_id"`
	Kind         string          `json:"kind"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	State        State           `json:"state"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// Body is the work performed for one job kind. A returned error moves the job
// to FAILURE with the error text recorded; the result is stored on SUCCESS.
type Body interface {
	Execute(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
}

// BodyFunc adapts an ordinary function to the Body interface.
type BodyFunc func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// Execute calls f(ctx, payload).
func (f BodyFunc) Execute(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return f(ctx, payload)
}

// JobStore defines the interface for persisting jobs.
type JobStore interface {
	// Save persists a new job in PENDING state.
	Save(ctx context.Context, job *Job) error

	// Get returns ErrJobNotFound when the id is unknown.
	Get(ctx context.Context, id uuid.UUID) (*Job, error)

	// Claim moves a PENDING job to PROCESSING. It reports false without error
	// when the job is no longer PENDING, for example after a duplicate hand-off.
	Claim(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error)

	// Complete records the result and moves a PROCESSING job to SUCCESS.
	Complete(ctx context.Context, id uuid.UUID, result json.RawMessage, finishedAt time.Time) error

	// Fail records the error text and moves a PROCESSING job to FAILURE.
	Fail(ctx context.Context, id uuid.UUID, errorMessage string, finishedAt time.Time) error

	// ListPending returns up to limit PENDING jobs, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Job, error)

	// ResetStuck moves PROCESSING jobs started before the cutoff back to
	// PENDING and returns how many were reset.
	ResetStuck(ctx context.Context, startedBefore time.Time) (int64, error)
}

type jobInfoKey struct{}

// JobInfo identifies the job a Body is running for.
type JobInfo struct {
	ID      uuid.UUID
	Kind    string
	OwnerID uuid.UUID
}

// WithJobInfo stores info in ctx for the running Body.
func WithJobInfo(ctx context.Context, info JobInfo) context.Context {
	return context.WithValue(ctx, jobInfoKey{}, info)
}

// JobInfoFromContext returns the job a Body is executing, if any.
func JobInfoFromContext(ctx context.Context) (JobInfo, bool) {
	info, ok := ctx.Value(jobInfoKey{}).(JobInfo)
	return info, ok
}
