package store

import (
	"context"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/google/uuid"
)

// AnalyticsStore reads usage metrics written by external producers.
type AnalyticsStore interface {
	// ListByUser returns the user's records, newest first. An empty slice is not an error.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AnalyticsRecord, error)
}

// TestResultStore persists the outcome records of test generation jobs.
type TestResultStore interface {
	Create(ctx context.Context, r *domain.TestResult) error
}
