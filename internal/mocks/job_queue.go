package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Script-GH/Ai-tutor/internal/task"
)

// MockJobQueue is a testify mock of the runner's Enqueue and Status methods.
type MockJobQueue struct {
	mock.Mock
}

// Enqueue is a mock implementation of task.Runner.Enqueue
func (m *MockJobQueue) Enqueue(ctx context.Context, kind string, ownerID uuid.UUID, payload json.RawMessage) (uuid.UUID, error) {
	args := m.Called(ctx, kind, ownerID, payload)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// Status is a mock implementation of task.Runner.Status
func (m *MockJobQueue) Status(ctx context.Context, id uuid.UUID) (*task.Job, error) {
	args := m.Called(ctx, id)
	if job, ok := args.Get(0).(*task.Job); ok {
		return job, args.Error(1)
	}
	return nil, args.Error(1)
}
