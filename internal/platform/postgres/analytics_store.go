package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// PostgresAnalyticsStore implements store.AnalyticsStore.
type PostgresAnalyticsStore struct {
	db store.DBTX
}

// NewPostgresAnalyticsStore creates a new PostgresAnalyticsStore.
func NewPostgresAnalyticsStore(db store.DBTX) *PostgresAnalyticsStore {
	return &PostgresAnalyticsStore{db: db}
}

var _ store.AnalyticsStore = (*PostgresAnalyticsStore)(nil)

// ListByUser implements store.AnalyticsStore.ListByUser.
func (s *PostgresAnalyticsStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.AnalyticsRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, metric, value, metadata, recorded_at
		 FROM analytics
		 WHERE user_id = $1
		 ORDER BY recorded_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.AnalyticsRecord, 0)
	for rows.Next() {
		var (
			r        domain.AnalyticsRecord
			metadata []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Metric, &r.Value, &metadata, &r.RecordedAt); err != nil {
			return nil, MapError(err)
		}
		if len(metadata) > 0 {
			r.Metadata = json.RawMessage(metadata)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return records, nil
}

// PostgresTestResultStore implements store.TestResultStore.
type PostgresTestResultStore struct {
	db store.DBTX
}

// NewPostgresTestResultStore creates a new PostgresTestResultStore.
func NewPostgresTestResultStore(db store.DBTX) *PostgresTestResultStore {
	return &PostgresTestResultStore{db: db}
}

var _ store.TestResultStore = (*PostgresTestResultStore)(nil)

// Create implements store.TestResultStore.Create. A re-run of the same job
// overwrites its earlier row.
func (s *PostgresTestResultStore) Create(ctx context.Context, r *domain.TestResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_results (job_id, syllabus_id, owner_id, test_type, difficulty, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (job_id) DO UPDATE SET
		     syllabus_id = EXCLUDED.syllabus_id,
		     test_type = EXCLUDED.test_type,
		     difficulty = EXCLUDED.difficulty,
		     message = EXCLUDED.message,
		     created_at = EXCLUDED.created_at`,
		r.JobID, r.SyllabusID, nullableUUID(r.OwnerID), r.TestType, r.Difficulty, r.Message, r.CreatedAt,
	)
	return MapError(err)
}

// nullableUUID stores uuid.Nil as SQL NULL.
func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
