package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/mocks"
	"github.com/Script-GH/Ai-tutor/internal/service/auth"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	newUserID := uuid.New()

	tests := []struct {
		name        string
		body        string
		setup       func(m *mocks.MockCredentialService)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "valid registration",
			body: `{"email":"ada@example.com","password":"correct horse"}`,
			setup: func(m *mocks.MockCredentialService) {
				m.On("Register", mock.Anything, "ada@example.com", "correct horse").Return(newUserID, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:        "missing password",
			body:        `{"email":"ada@example.com"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Email and password are required",
		},
		{
			name:        "malformed json",
			body:        `{"email":`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request format",
		},
		{
			name: "email taken",
			body: `{"email":"ada@example.com","password":"correct horse"}`,
			setup: func(m *mocks.MockCredentialService) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(uuid.Nil, auth.ErrEmailTaken)
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Email already exists",
		},
		{
			name: "password too short",
			body: `{"email":"ada@example.com","password":"short"}`,
			setup: func(m *mocks.MockCredentialService) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything).
					Return(uuid.Nil, fmt.Errorf("%w: %w", auth.ErrInvalidInput, domain.ErrPasswordTooShort))
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Password is too short",
		},
		{
			name: "store failure",
			body: `{"email":"ada@example.com","password":"correct horse"}`,
			setup: func(m *mocks.MockCredentialService) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything).
					Return(uuid.Nil, errors.New("connection reset"))
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to create user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			credentials := &mocks.MockCredentialService{}
			if tt.setup != nil {
				tt.setup(credentials)
			}
			handler := NewAuthHandler(credentials, &mocks.MockJWTService{})

			w := httptest.NewRecorder()
			handler.Register(w, newJSONRequest(http.MethodPost, "/api/auth/register", tt.body, uuid.Nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusCreated {
				resp := decodeBody[RegisterResponse](t, w)
				assert.Equal(t, "User created successfully", resp.Message)
				assert.Equal(t, newUserID, resp.UserID)
			} else {
				resp := decodeBody[map[string]string](t, w)
				assert.Equal(t, tt.wantMessage, resp["error"])
			}
			credentials.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	expiresAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		credentials := &mocks.MockCredentialService{}
		credentials.On("Verify", mock.Anything, " Ada@Example.com", "correct horse").Return(userID, nil)
		jwtService := &mocks.MockJWTService{Token: "signed-token", ExpiresAt: expiresAt}
		handler := NewAuthHandler(credentials, jwtService)

		w := httptest.NewRecorder()
		handler.Login(w, newJSONRequest(http.MethodPost, "/api/auth/login",
			`{"email":" Ada@Example.com","password":"correct horse"}`, uuid.Nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[LoginResponse](t, w)
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "signed-token", resp.AccessToken)
		assert.Equal(t, "2026-01-02T03:04:05Z", resp.ExpiresAt)
		assert.Equal(t, userID, resp.User.ID)
		assert.Equal(t, "ada@example.com", resp.User.Email)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		t.Parallel()

		credentials := &mocks.MockCredentialService{}
		credentials.On("Verify", mock.Anything, mock.Anything, mock.Anything).
			Return(uuid.Nil, auth.ErrInvalidCredentials)
		handler := NewAuthHandler(credentials, &mocks.MockJWTService{})

		w := httptest.NewRecorder()
		handler.Login(w, newJSONRequest(http.MethodPost, "/api/auth/login",
			`{"email":"ada@example.com","password":"wrong"}`, uuid.Nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeBody[LoginErrorResponse](t, w)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "Invalid email or password", resp.Message)
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()

		credentials := &mocks.MockCredentialService{}
		credentials.On("Verify", mock.Anything, mock.Anything, mock.Anything).
			Return(uuid.Nil, errors.New("db down"))
		handler := NewAuthHandler(credentials, &mocks.MockJWTService{})

		w := httptest.NewRecorder()
		handler.Login(w, newJSONRequest(http.MethodPost, "/api/auth/login",
			`{"email":"ada@example.com","password":"x"}`, uuid.Nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})

	t.Run("token generation failure", func(t *testing.T) {
		t.Parallel()

		credentials := &mocks.MockCredentialService{}
		credentials.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(userID, nil)
		handler := NewAuthHandler(credentials, &mocks.MockJWTService{Err: errors.New("sign failed")})

		w := httptest.NewRecorder()
		handler.Login(w, newJSONRequest(http.MethodPost, "/api/auth/login",
			`{"email":"ada@example.com","password":"correct horse"}`, uuid.Nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeBody[map[string]string](t, w)
		assert.Equal(t, "Failed to generate authentication token", resp["error"])
	})
}
