package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobEvent describes one state transition of a background job.
// State holds the job state name (PENDING, PROCESSING, SUCCESS, FAILURE).
type JobEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	JobID   uuid.UUID `json:"task_id"`
	Kind    string    `json:"kind"`
	OwnerID uuid.UUID `json:"owner_id"`
	State   string    `json:"state"`

	// Result is set on SUCCESS, Error on FAILURE.
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// NewJobEvent creates an event for the given job transition.
func NewJobEvent(jobID uuid.UUID, kind string, ownerID uuid.UUID, state string) *JobEvent {
	return &JobEvent{
		ID:         uuid.New(),
		JobID:      jobID,
		Kind:       kind,
		OwnerID:    ownerID,
		State:      state,
		OccurredAt: time.Now().UTC(),
	}
}

// Terminal reports whether the event closes the job's lifecycle.
func (e *JobEvent) Terminal() bool {
	return e.State == "SUCCESS" || e.State == "FAILURE"
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *JobEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *JobEvent) error { return nil }
