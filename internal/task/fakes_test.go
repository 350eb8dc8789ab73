package task_test

import (
	"context"
	"sync"

	"github.com/Script-GH/Ai-tutor/internal/domain"
)

type fakeResultStore struct {
	mu      sync.Mutex
	results []domain.TestResult
	err     error
}

func (s *fakeResultStore) Create(ctx context.Context, r *domain.TestResult) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, *r)
	return nil
}
