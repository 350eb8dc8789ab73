package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Script-GH/Ai-tutor/internal/service/auth"
)

// MockCredentialService is a testify mock of auth.CredentialService.
type MockCredentialService struct {
	mock.Mock
}

var _ auth.CredentialService = (*MockCredentialService)(nil)

// Register is a mock implementation of auth.CredentialService.Register
func (m *MockCredentialService) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// Verify is a mock implementation of auth.CredentialService.Verify
func (m *MockCredentialService) Verify(ctx context.Context, email, password string) (uuid.UUID, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
