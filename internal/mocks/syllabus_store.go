package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// MockSyllabusStore is an in-memory store.SyllabusStore. Search matches
// filenames containing the query, case-insensitively, newest first.
type MockSyllabusStore struct {
	// Function fields override the in-memory behaviour when set.
	CreateFn        func(ctx context.Context, s *domain.SyllabusFile) error
	SearchFn        func(ctx context.Context, query string, limit, offset int) ([]store.SearchResult, error)
	DeleteExpiredFn func(ctx context.Context, cutoff time.Time) ([]domain.SyllabusFile, error)

	mu      sync.Mutex
	Syllabi map[uuid.UUID]*domain.SyllabusFile

	// LastSearch records the arguments of the most recent Search call.
	LastSearch struct {
		Query         string
		Limit, Offset int
	}
}

var _ store.SyllabusStore = (*MockSyllabusStore)(nil)

// NewMockSyllabusStore creates a store holding records.
func NewMockSyllabusStore(records ...domain.SyllabusFile) *MockSyllabusStore {
	m := &MockSyllabusStore{Syllabi: make(map[uuid.UUID]*domain.SyllabusFile)}
	for i := range records {
		rec := records[i]
		m.Syllabi[rec.ID] = &rec
	}
	return m
}

// Has reports whether a record with id is stored.
func (m *MockSyllabusStore) Has(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Syllabi[id]
	return ok
}

// Create implements store.SyllabusStore.
func (m *MockSyllabusStore) Create(ctx context.Context, s *domain.SyllabusFile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Syllabi[s.ID] = &cp
	return nil
}

// GetByID implements store.SyllabusStore.
func (m *MockSyllabusStore) GetByID(_ context.Context, id uuid.UUID) (*domain.SyllabusFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Syllabi[id]
	if !ok {
		return nil, store.ErrSyllabusNotFound
	}
	cp := *s
	return &cp, nil
}

// DeleteExpired implements store.SyllabusStore.
func (m *MockSyllabusStore) DeleteExpired(ctx context.Context, cutoff time.Time) ([]domain.SyllabusFile, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted []domain.SyllabusFile
	for id, s := range m.Syllabi {
		if s.ExpiredBy(cutoff) {
			deleted = append(deleted, *s)
			delete(m.Syllabi, id)
		}
	}
	return deleted, nil
}

// FileReferenced implements store.SyllabusStore.
func (m *MockSyllabusStore) FileReferenced(_ context.Context, fileID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Syllabi {
		if s.FileID == fileID {
			return true, nil
		}
	}
	return false, nil
}

// Search implements store.SyllabusStore.
func (m *MockSyllabusStore) Search(ctx context.Context, query string, limit, offset int) ([]store.SearchResult, error) {
	m.mu.Lock()
	m.LastSearch.Query, m.LastSearch.Limit, m.LastSearch.Offset = query, limit, offset
	m.mu.Unlock()

	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []store.SearchResult
	for _, s := range m.Syllabi {
		if strings.Contains(strings.ToLower(s.Filename), strings.ToLower(query)) {
			matches = append(matches, store.SearchResult{SyllabusFile: *s, Rank: 1})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].UploadedAt.Equal(matches[j].UploadedAt) {
			return matches[i].UploadedAt.After(matches[j].UploadedAt)
		}
		return matches[i].ID.String() < matches[j].ID.String()
	})

	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}
