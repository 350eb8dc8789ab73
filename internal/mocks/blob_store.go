package mocks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/Script-GH/Ai-tutor/internal/store"
)

// MockBlobStore is an in-memory, content-addressed store.BlobStore.
type MockBlobStore struct {
	PutErr error
	GetErr error
	// DeleteErrs fails Delete for the listed ids.
	DeleteErrs map[store.BlobID]error

	mu      sync.Mutex
	Blobs   map[store.BlobID][]byte
	Deleted []store.BlobID
}

var _ store.BlobStore = (*MockBlobStore)(nil)

// NewMockBlobStore creates an empty blob store.
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{Blobs: make(map[store.BlobID][]byte)}
}

// Put implements store.BlobStore.
func (m *MockBlobStore) Put(_ context.Context, data []byte, _, _ string) (store.BlobID, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}
	sum := sha256.Sum256(data)
	id := store.BlobID(hex.EncodeToString(sum[:]))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Blobs[id] = append([]byte(nil), data...)
	return id, nil
}

// Get implements store.BlobStore.
func (m *MockBlobStore) Get(_ context.Context, id store.BlobID) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Blobs[id]
	if !ok {
		return nil, store.ErrBlobNotFound
	}
	return data, nil
}

// Delete implements store.BlobStore.
func (m *MockBlobStore) Delete(_ context.Context, id store.BlobID) error {
	if err := m.DeleteErrs[id]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Blobs, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}
