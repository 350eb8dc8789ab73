package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
	"github.com/Script-GH/Ai-tutor/internal/task"
)

const jobColumns = `id, kind, owner_id, payload, state, result, error_message,
	created_at, updated_at, started_at, finished_at`

// PostgresJobStore implements task.JobStore.
// Every state change is a conditional UPDATE on the current state, so a
// job claimed by one worker cannot be claimed or finished by another.
type PostgresJobStore struct {
	db store.DBTX
}

// NewPostgresJobStore creates a new PostgresJobStore.
func NewPostgresJobStore(db store.DBTX) *PostgresJobStore {
	return &PostgresJobStore{db: db}
}

var _ task.JobStore = (*PostgresJobStore)(nil)

// Save implements task.JobStore.Save.
func (s *PostgresJobStore) Save(ctx context.Context, job *task.Job) error {
	payload := job.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, kind, owner_id, payload, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.Kind, nullableUUID(job.OwnerID), []byte(payload),
		string(task.StatePending), job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to insert job",
			"error", err,
			"job_id", job.ID,
			"kind", job.Kind)
		return MapError(err)
	}
	return nil
}

// Get implements task.JobStore.Get.
func (s *PostgresJobStore) Get(ctx context.Context, id uuid.UUID) (*task.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, task.ErrJobNotFound
		}
		return nil, MapError(err)
	}
	return job, nil
}

// Claim implements task.JobStore.Claim.
func (s *PostgresJobStore) Claim(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs
		 SET state = $2, started_at = $3, updated_at = $3
		 WHERE id = $1 AND state = $4`,
		id, string(task.StateProcessing), startedAt, string(task.StatePending),
	)
	if err != nil {
		return false, MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// Complete implements task.JobStore.Complete.
func (s *PostgresJobStore) Complete(
	ctx context.Context,
	id uuid.UUID,
	result json.RawMessage,
	finishedAt time.Time,
) error {
	var resultArg any
	if len(result) > 0 {
		resultArg = []byte(result)
	}
	return s.finish(ctx,
		`UPDATE jobs
		 SET state = $2, result = $3, error_message = NULL, finished_at = $4, updated_at = $4
		 WHERE id = $1 AND state = $5`,
		id, string(task.StateSuccess), resultArg, finishedAt, string(task.StateProcessing),
	)
}

// Fail implements task.JobStore.Fail.
func (s *PostgresJobStore) Fail(
	ctx context.Context,
	id uuid.UUID,
	errorMessage string,
	finishedAt time.Time,
) error {
	return s.finish(ctx,
		`UPDATE jobs
		 SET state = $2, error_message = $3, result = NULL, finished_at = $4, updated_at = $4
		 WHERE id = $1 AND state = $5`,
		id, string(task.StateFailure), errorMessage, finishedAt, string(task.StateProcessing),
	)
}

func (s *PostgresJobStore) finish(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(res, "processing job"); err != nil {
		return fmt.Errorf("job %v: %w", args[0], err)
	}
	return nil
}

// ListPending implements task.JobStore.ListPending.
func (s *PostgresJobStore) ListPending(ctx context.Context, limit int) ([]*task.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE state = $1
		 ORDER BY created_at, id
		 LIMIT $2`,
		string(task.StatePending), limit,
	)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*task.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, MapError(err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return jobs, nil
}

// ResetStuck implements task.JobStore.ResetStuck.
func (s *PostgresJobStore) ResetStuck(ctx context.Context, startedBefore time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs
		 SET state = $1, started_at = NULL, updated_at = NOW()
		 WHERE state = $2 AND started_at < $3`,
		string(task.StatePending), string(task.StateProcessing), startedBefore,
	)
	if err != nil {
		return 0, MapError(err)
	}
	return res.RowsAffected()
}

func scanJob(row rowScanner) (*task.Job, error) {
	var (
		job        task.Job
		ownerID    uuid.NullUUID
		payload    []byte
		state      string
		result     []byte
		errMessage sql.NullString
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)
	if err := row.Scan(
		&job.ID, &job.Kind, &ownerID, &payload, &state, &result, &errMessage,
		&job.CreatedAt, &job.UpdatedAt, &startedAt, &finishedAt,
	); err != nil {
		return nil, err
	}

	if ownerID.Valid {
		job.OwnerID = ownerID.UUID
	}
	job.Payload = json.RawMessage(payload)
	job.State = task.State(state)
	if len(result) > 0 {
		job.Result = json.RawMessage(result)
	}
	job.ErrorMessage = errMessage.String
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}
	return &job, nil
}
