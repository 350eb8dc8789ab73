package task

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockJobStore implements JobStore in memory for testing
type MockJobStore struct {
	mutex sync.RWMutex
	jobs  map[uuid.UUID]*Job

	SaveFn  func(ctx context.Context, job *Job) error
	ClaimFn func(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error)
}

// NewMockJobStore creates a new MockJobStore with default implementations
func NewMockJobStore() *MockJobStore {
	s := &MockJobStore{jobs: make(map[uuid.UUID]*Job)}

	s.SaveFn = func(ctx context.Context, job *Job) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		cp := *job
		s.jobs[job.ID] = &cp
		return nil
	}

	s.ClaimFn = func(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error) {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		job, ok := s.jobs[id]
		if !ok || job.State != StatePending {
			return false, nil
		}
		job.State = StateProcessing
		job.StartedAt = &startedAt
		job.UpdatedAt = startedAt
		return true, nil
	}

	return s
}

func (s *MockJobStore) Save(ctx context.Context, job *Job) error {
	return s.SaveFn(ctx, job)
}

func (s *MockJobStore) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *MockJobStore) Claim(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error) {
	return s.ClaimFn(ctx, id, startedAt)
}

func (s *MockJobStore) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage, finishedAt time.Time) error {
	return s.finish(id, StateSuccess, result, "", finishedAt)
}

func (s *MockJobStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string, finishedAt time.Time) error {
	return s.finish(id, StateFailure, nil, errorMessage, finishedAt)
}

func (s *MockJobStore) finish(id uuid.UUID, state State, result json.RawMessage, msg string, at time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.State = state
	job.Result = result
	job.ErrorMessage = msg
	job.FinishedAt = &at
	job.UpdatedAt = at
	return nil
}

func (s *MockJobStore) ListPending(ctx context.Context, limit int) ([]*Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var pending []*Job
	for _, job := range s.jobs {
		if job.State == StatePending {
			cp := *job
			pending = append(pending, &cp)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *MockJobStore) ResetStuck(ctx context.Context, startedBefore time.Time) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var n int64
	for _, job := range s.jobs {
		if job.State == StateProcessing && job.StartedAt != nil && job.StartedAt.Before(startedBefore) {
			job.State = StatePending
			job.StartedAt = nil
			n++
		}
	}
	return n, nil
}

// put stores a job directly, bypassing SaveFn.
func (s *MockJobStore) put(job *Job) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
}

func (s *MockJobStore) state(id uuid.UUID) State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if job, ok := s.jobs[id]; ok {
		return job.State
	}
	return ""
}
