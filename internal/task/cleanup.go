package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

var cleanupDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "aitutor_cleanup_deleted_total",
		Help: "Objects removed by syllabus cleanup",
	},
	[]string{"object"},
)

// CleanupPayload optionally overrides the retention window of a run.
type CleanupPayload struct {
	RetentionDays int `json:"retention_days,omitempty"`
}

// CleanupResult is the stored result of a cleanup_syllabi job.
type CleanupResult struct {
	Cutoff       time.Time `json:"cutoff"`
	Deleted      int       `json:"deleted"`
	BlobsDeleted int       `json:"blobs_deleted"`
	BlobFailures int       `json:"blob_failures"`
}

// BlobDeleter removes stored content.
type BlobDeleter interface {
	Delete(ctx context.Context, id store.BlobID) error
}

// CleanupBody removes temporary syllabi older than the retention window.
// Blob removal is best-effort: failures are logged and counted.
type CleanupBody struct {
	syllabi   store.SyllabusStore
	blobs     BlobDeleter
	retention time.Duration
	now       func() time.Time
}

var _ Body = (*CleanupBody)(nil)

// NewCleanupBody creates the cleanup_syllabi job body.
func NewCleanupBody(syllabi store.SyllabusStore, blobs BlobDeleter, retention time.Duration) *CleanupBody {
	return &CleanupBody{
		syllabi:   syllabi,
		blobs:     blobs,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Execute implements Body.
func (b *CleanupBody) Execute(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	retention := b.retention
	if len(payload) > 0 {
		var p CleanupPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid cleanup payload: %w", err)
		}
		if p.RetentionDays > 0 {
			retention = time.Duration(p.RetentionDays) * 24 * time.Hour
		}
	}

	cutoff := domain.RetentionCutoff(b.now(), retention)
	deleted, err := b.syllabi.DeleteExpired(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired syllabi: %w", err)
	}
	cleanupDeletedTotal.WithLabelValues("syllabus").Add(float64(len(deleted)))

	result := CleanupResult{Cutoff: cutoff, Deleted: len(deleted)}
	released := make(map[string]struct{}, len(deleted))
	for _, s := range deleted {
		if _, seen := released[s.FileID]; seen {
			continue
		}
		released[s.FileID] = struct{}{}

		referenced, err := b.syllabi.FileReferenced(ctx, s.FileID)
		if err != nil {
			log.Warn("failed to check blob references",
				"file_id", s.FileID,
				"error", err)
			result.BlobFailures++
			continue
		}
		if referenced {
			continue
		}

		if err := b.blobs.Delete(ctx, store.BlobID(s.FileID)); err != nil {
			log.Warn("failed to delete blob of expired syllabus",
				"syllabus_id", s.ID,
				"file_id", s.FileID,
				"error", err)
			result.BlobFailures++
			continue
		}
		result.BlobsDeleted++
	}
	cleanupDeletedTotal.WithLabelValues("blob").Add(float64(result.BlobsDeleted))

	log.Info("syllabus cleanup finished",
		"cutoff", cutoff,
		"deleted", result.Deleted,
		"blobs_deleted", result.BlobsDeleted,
		"blob_failures", result.BlobFailures)

	return json.Marshal(result)
}
