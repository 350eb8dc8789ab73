package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Script-GH/Ai-tutor/internal/mocks"
	"github.com/Script-GH/Ai-tutor/internal/task"
)

func TestGenerateTest(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	syllabusID := uuid.New()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		jobID := uuid.New()
		queue := &mocks.MockJobQueue{}
		queue.On("Enqueue", mock.Anything, task.KindGenerateTest, userID,
			mock.MatchedBy(func(payload json.RawMessage) bool {
				var p task.GenerateTestPayload
				return json.Unmarshal(payload, &p) == nil &&
					p.SyllabusID == syllabusID.String() &&
					p.Difficulty == "hard"
			})).Return(jobID, nil)
		handler := NewJobHandler(queue)

		w := httptest.NewRecorder()
		handler.GenerateTest(w, newJSONRequest(http.MethodPost, "/api/generate/test",
			`{"syllabus_id":"`+syllabusID.String()+`","test_type":"quiz","difficulty":"hard"}`, userID))

		assert.Equal(t, http.StatusAccepted, w.Code)
		resp := decodeBody[TaskAcceptedResponse](t, w)
		assert.Equal(t, jobID, resp.TaskID)
		assert.Equal(t, "Test generation started", resp.Message)
		queue.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		queue := &mocks.MockJobQueue{}
		handler := NewJobHandler(queue)

		w := httptest.NewRecorder()
		handler.GenerateTest(w, newJSONRequest(http.MethodPost, "/api/generate/test", `{"syllabus_id":`, userID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&mocks.MockJobQueue{})

		w := httptest.NewRecorder()
		handler.GenerateTest(w, newRequest(http.MethodPost, "/api/generate/test", nil, userID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("enqueue failure", func(t *testing.T) {
		t.Parallel()

		queue := &mocks.MockJobQueue{}
		queue.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(uuid.Nil, errors.New("insert into jobs: connection refused"))
		handler := NewJobHandler(queue)

		w := httptest.NewRecorder()
		handler.GenerateTest(w, newJSONRequest(http.MethodPost, "/api/generate/test", `{}`, userID))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeBody[map[string]string](t, w)
		assert.Equal(t, "Test generation failed", resp["error"])
	})

	t.Run("runner stopped", func(t *testing.T) {
		t.Parallel()

		queue := &mocks.MockJobQueue{}
		queue.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(uuid.Nil, task.ErrRunnerStopped)
		handler := NewJobHandler(queue)

		w := httptest.NewRecorder()
		handler.GenerateTest(w, newJSONRequest(http.MethodPost, "/api/generate/test", `{}`, userID))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Second)
	job := &task.Job{
		ID:         uuid.New(),
		Kind:       task.KindGenerateTest,
		OwnerID:    owner,
		State:      task.StateSuccess,
		Result:     json.RawMessage(`{"message":"Test generated"}`),
		CreatedAt:  started.Add(-time.Second),
		UpdatedAt:  finished,
		StartedAt:  &started,
		FinishedAt: &finished,
	}
	systemJob := &task.Job{ID: uuid.New(), Kind: task.KindCleanupSyllabi, State: task.StatePending}
	running := &task.Job{ID: uuid.New(), Kind: task.KindGenerateTest, OwnerID: owner, State: task.StateProcessing}
	missing := uuid.New()

	queue := &mocks.MockJobQueue{}
	queue.On("Status", mock.Anything, job.ID).Return(job, nil)
	queue.On("Status", mock.Anything, systemJob.ID).Return(systemJob, nil)
	queue.On("Status", mock.Anything, running.ID).Return(running, nil)
	queue.On("Status", mock.Anything, missing).Return(nil, task.ErrJobNotFound)
	handler := NewJobHandler(queue)

	get := func(userID uuid.UUID, id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.GetJob(w, withURLParam(newRequest(http.MethodGet, "/api/jobs/"+id, nil, userID), "id", id))
		return w
	}

	t.Run("owner sees the job", func(t *testing.T) {
		w := get(owner, job.ID.String())
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBody[JobResponse](t, w)
		assert.Equal(t, job.ID, resp.TaskID)
		assert.Equal(t, task.StateSuccess, resp.State)
		assert.True(t, resp.Done)
		assert.JSONEq(t, `{"message":"Test generated"}`, string(resp.Result))
		require.NotNil(t, resp.FinishedAt)
		assert.True(t, finished.Equal(*resp.FinishedAt))
	})

	t.Run("running job is not done", func(t *testing.T) {
		w := get(owner, running.ID.String())
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBody[JobResponse](t, w)
		assert.Equal(t, task.StateProcessing, resp.State)
		assert.False(t, resp.Done)
		assert.Nil(t, resp.FinishedAt)
	})

	t.Run("other users get 404", func(t *testing.T) {
		w := get(uuid.New(), job.ID.String())
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Job not found")
	})

	t.Run("system jobs are hidden", func(t *testing.T) {
		w := get(owner, systemJob.ID.String())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown job", func(t *testing.T) {
		w := get(owner, missing.String())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := get(owner, "12345")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
