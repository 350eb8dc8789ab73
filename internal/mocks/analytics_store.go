package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// MockAnalyticsStore is a testify mock of store.AnalyticsStore.
type MockAnalyticsStore struct {
	mock.Mock
}

var _ store.AnalyticsStore = (*MockAnalyticsStore)(nil)

// ListByUser is a mock implementation of store.AnalyticsStore.ListByUser
func (m *MockAnalyticsStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AnalyticsRecord, error) {
	args := m.Called(ctx, userID)
	if records, ok := args.Get(0).([]domain.AnalyticsRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}
