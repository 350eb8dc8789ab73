package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

const syllabusColumns = `id, file_id, filename, content_type, size, uploaded_by, uploaded_at, status`

// PostgresSyllabusStore implements store.SyllabusStore.
type PostgresSyllabusStore struct {
	db store.DBTX
}

// NewPostgresSyllabusStore creates a new PostgresSyllabusStore.
func NewPostgresSyllabusStore(db store.DBTX) *PostgresSyllabusStore {
	return &PostgresSyllabusStore{db: db}
}

var _ store.SyllabusStore = (*PostgresSyllabusStore)(nil)

// Create implements store.SyllabusStore.Create.
func (s *PostgresSyllabusStore) Create(ctx context.Context, rec *domain.SyllabusFile) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO syllabi (`+syllabusColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.FileID, rec.Filename, rec.ContentType, rec.Size,
		rec.UploadedBy, rec.UploadedAt, string(rec.Status),
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to insert syllabus",
			"error", err,
			"syllabus_id", rec.ID,
			"uploaded_by", rec.UploadedBy)
		return MapError(err)
	}
	return nil
}

// GetByID implements store.SyllabusStore.GetByID.
func (s *PostgresSyllabusStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyllabusFile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+syllabusColumns+` FROM syllabi WHERE id = $1`, id)

	rec, err := scanSyllabus(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSyllabusNotFound
		}
		return nil, MapError(err)
	}
	return rec, nil
}

// DeleteExpired implements store.SyllabusStore.DeleteExpired.
// The predicate mirrors domain.SyllabusFile.ExpiredBy.
func (s *PostgresSyllabusStore) DeleteExpired(ctx context.Context, cutoff time.Time) ([]domain.SyllabusFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`DELETE FROM syllabi
		 WHERE status = $1 AND uploaded_at < $2
		 RETURNING `+syllabusColumns,
		string(domain.SyllabusStatusTemporary), cutoff,
	)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var deleted []domain.SyllabusFile
	for rows.Next() {
		rec, err := scanSyllabus(rows)
		if err != nil {
			return nil, MapError(err)
		}
		deleted = append(deleted, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return deleted, nil
}

// FileReferenced implements store.SyllabusStore.FileReferenced.
func (s *PostgresSyllabusStore) FileReferenced(ctx context.Context, fileID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM syllabi WHERE file_id = $1)`, fileID,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Search implements store.SyllabusStore.Search.
func (s *PostgresSyllabusStore) Search(ctx context.Context, query string, limit, offset int) ([]store.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+syllabusColumns+`, ts_rank(search_vector, q) AS rank
		 FROM syllabi, plainto_tsquery('simple', $1) AS q
		 WHERE search_vector @@ q
		 ORDER BY rank DESC, uploaded_at DESC, id
		 LIMIT $2 OFFSET $3`,
		query, limit, offset,
	)
	if err != nil {
		logger.FromContext(ctx).Error("syllabus search failed", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]store.SearchResult, 0, limit)
	for rows.Next() {
		var (
			r      store.SearchResult
			status string
		)
		if err := rows.Scan(
			&r.ID, &r.FileID, &r.Filename, &r.ContentType, &r.Size,
			&r.UploadedBy, &r.UploadedAt, &status, &r.Rank,
		); err != nil {
			return nil, MapError(err)
		}
		r.Status = domain.SyllabusStatus(status)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyllabus(row rowScanner) (*domain.SyllabusFile, error) {
	var (
		rec    domain.SyllabusFile
		status string
	)
	if err := row.Scan(
		&rec.ID, &rec.FileID, &rec.Filename, &rec.ContentType, &rec.Size,
		&rec.UploadedBy, &rec.UploadedAt, &status,
	); err != nil {
		return nil, err
	}
	rec.Status = domain.SyllabusStatus(status)
	return &rec, nil
}
