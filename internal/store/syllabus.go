package store

import (
	"context"
	"time"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/google/uuid"
)

// SearchResult is a syllabus matched by full-text search together with its rank.
type SearchResult struct {
	domain.SyllabusFile
	Rank float64 `json:"rank"`
}

// SyllabusStore persists syllabus metadata. Content lives in the blob store.
type SyllabusStore interface {
	// Create saves a new syllabus record.
	// Returns ErrForeignKey if the uploader does not exist.
	Create(ctx context.Context, s *domain.SyllabusFile) error

	// GetByID returns ErrSyllabusNotFound if the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SyllabusFile, error)

	// DeleteExpired removes every temporary syllabus uploaded before cutoff
	// and returns the removed records so their blobs can be released.
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]domain.SyllabusFile, error)

	// FileReferenced reports whether any record still points at the blob.
	FileReferenced(ctx context.Context, fileID string) (bool, error)

	// Search runs a full-text query over filenames, ordered by rank desc,
	// uploaded_at desc, id.
	Search(ctx context.Context, query string, limit, offset int) ([]SearchResult, error)
}
