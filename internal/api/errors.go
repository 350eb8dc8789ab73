package api

import (
	"errors"
	"net/http"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/service/auth"
	"github.com/Script-GH/Ai-tutor/internal/store"
	"github.com/Script-GH/Ai-tutor/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidAuthFormat),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// A duplicate email is reported as a bad request, not a conflict.
	case errors.Is(err, auth.ErrEmailTaken),
		store.IsDuplicateError(err):
		return http.StatusBadRequest

	// Bad request errors
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, task.ErrUnknownKind):
		return http.StatusBadRequest

	case errors.Is(err, task.ErrRunnerStopped):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"

	case errors.Is(err, auth.ErrInvalidAuthFormat):
		return "Invalid authorization format"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrSyllabusNotFound),
		errors.Is(err, store.ErrBlobNotFound):
		return "File not found"

	case errors.Is(err, store.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation):
		return validationMessage(err)

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, task.ErrUnknownKind):
		return "Unknown job kind"

	case errors.Is(err, task.ErrRunnerStopped):
		return "Service is shutting down"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage names the rule that failed without echoing user input.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyEmail):
		return "Email is required"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, domain.ErrEmptyPassword):
		return "Password is required"
	case errors.Is(err, domain.ErrPasswordTooShort):
		return "Password is too short"
	case errors.Is(err, domain.ErrPasswordTooLong):
		return "Password is too long"
	case errors.Is(err, domain.ErrInvalidSyllabusStatus):
		return "Invalid status"
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return "Invalid " + vErr.Field
	}
	return "Validation error"
}

// HandleAPIError writes the status and safe message for err. Internal
// errors are answered with fallback and logged at ERROR.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
