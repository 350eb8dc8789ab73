package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/service/auth"
	"github.com/Script-GH/Ai-tutor/internal/store"
	"github.com/Script-GH/Ai-tutor/internal/task"
)

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"malformed token", auth.ErrMalformedToken, http.StatusUnauthorized, "Invalid token"},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized, "Authorization header required"},
		{"bad auth header", auth.ErrInvalidAuthFormat, http.StatusUnauthorized, "Invalid authorization format"},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{"email taken", auth.ErrEmailTaken, http.StatusBadRequest, "Email already exists"},
		{"wrapped email exists", fmt.Errorf("create: %w", store.ErrEmailExists), http.StatusBadRequest, "Email already exists"},
		{"invalid email", fmt.Errorf("%w: %w", auth.ErrInvalidInput, domain.ErrInvalidEmail), http.StatusBadRequest, "Invalid email format"},
		{"password too long", fmt.Errorf("%w: %w", auth.ErrInvalidInput, domain.ErrPasswordTooLong), http.StatusBadRequest, "Password is too long"},
		{"bad status", domain.ErrInvalidSyllabusStatus, http.StatusBadRequest, "Invalid status"},
		{"field validation", domain.NewValidationError("id", "is required", domain.ErrValidation), http.StatusBadRequest, "Invalid id"},
		{"invalid id", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest, "Invalid ID"},
		{"syllabus not found", store.ErrSyllabusNotFound, http.StatusNotFound, "File not found"},
		{"blob not found", fmt.Errorf("get: %w", store.ErrBlobNotFound), http.StatusNotFound, "File not found"},
		{"job not found", task.ErrJobNotFound, http.StatusNotFound, "Job not found"},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"unknown kind", task.ErrUnknownKind, http.StatusBadRequest, "Unknown job kind"},
		{"runner stopped", task.ErrRunnerStopped, http.StatusServiceUnavailable, "Service is shutting down"},
		{"unexpected", errors.New("pq: password=hunter2"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.wantMsg, GetSafeErrorMessage(tt.err))
		})
	}

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestHandleAPIErrorUsesFallbackForInternalErrors(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	HandleAPIError(w, httptest.NewRequest(http.MethodGet, "/", nil),
		errors.New("dial tcp 10.0.0.5:5432: connection refused"), "Failed to retrieve job")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to retrieve job")
	assert.NotContains(t, w.Body.String(), "10.0.0.5")

	w = httptest.NewRecorder()
	HandleAPIError(w, httptest.NewRequest(http.MethodGet, "/", nil), store.ErrJobNotFound, "Failed to retrieve job")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Job not found")
}
