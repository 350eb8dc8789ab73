package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// GenerateTestPayload is the input of a generate_test job.
type GenerateTestPayload struct {
	SyllabusID string `json:"syllabus_id"`
	TestType   string `json:"test_type,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// GenerateTestResult is the stored result of a generate_test job.
type GenerateTestResult struct {
	Message     string    `json:"message"`
	SyllabusID  uuid.UUID `json:"syllabus_id"`
	Filename    string    `json:"filename"`
	TestType    string    `json:"test_type,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GenerateTestBody stands in for test generation: it checks the syllabus
// exists and records a test_results row for the job.
type GenerateTestBody struct {
	syllabi store.SyllabusStore
	results store.TestResultStore
	now     func() time.Time
}

var _ Body = (*GenerateTestBody)(nil)

// NewGenerateTestBody creates the generate_test job body.
func NewGenerateTestBody(syllabi store.SyllabusStore, results store.TestResultStore) *GenerateTestBody {
	return &GenerateTestBody{
		syllabi: syllabi,
		results: results,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Execute implements Body.
func (b *GenerateTestBody) Execute(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	var req GenerateTestPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("invalid generate_test payload: %w", err)
	}

	syllabusID, err := uuid.Parse(req.SyllabusID)
	if err != nil {
		return nil, fmt.Errorf("invalid syllabus_id %q", req.SyllabusID)
	}

	syllabus, err := b.syllabi.GetByID(ctx, syllabusID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("syllabus %s not found", syllabusID)
		}
		return nil, fmt.Errorf("failed to load syllabus: %w", err)
	}

	info, _ := JobInfoFromContext(ctx)
	now := b.now()
	record := &domain.TestResult{
		JobID:      info.ID,
		SyllabusID: syllabus.ID,
		OwnerID:    info.OwnerID,
		TestType:   req.TestType,
		Difficulty: req.Difficulty,
		Message:    "Test generation completed",
		CreatedAt:  now,
	}
	if err := b.results.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store test result: %w", err)
	}

	log.Debug("recorded test result",
		"syllabus_id", syllabus.ID,
		"test_type", req.TestType,
		"difficulty", req.Difficulty)

	return json.Marshal(GenerateTestResult{
		Message:     record.Message,
		SyllabusID:  syllabus.ID,
		Filename:    syllabus.Filename,
		TestType:    req.TestType,
		Difficulty:  req.Difficulty,
		GeneratedAt: now,
	})
}
