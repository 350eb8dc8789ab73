package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalyticsRecord is a usage metric written by an external producer.
type AnalyticsRecord struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Metric     string          `json:"metric"`
	Value      float64         `json:"value"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// TestResult is the record written when a test generation job finishes.
type TestResult struct {
	JobID      uuid.UUID `json:"task_id"`
	SyllabusID uuid.UUID `json:"syllabus_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	TestType   string    `json:"test_type,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
