package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Script-GH/Ai-tutor/internal/api/shared"
	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	credentials auth.CredentialService
	jwtService  auth.JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(credentials auth.CredentialService, jwtService auth.JWTService) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		jwtService:  jwtService,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	userID, err := h.credentials.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	logger.FromContext(r.Context()).Info("user registered", "user_id", userID)
	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		Message: "User created successfully",
		UserID:  userID,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	userID, err := h.credentials.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.FromContext(r.Context()).Debug("login rejected")
			shared.RespondWithJSON(w, r, http.StatusUnauthorized, LoginErrorResponse{
				Status:  "error",
				Message: "Invalid email or password",
				TraceID: shared.GetTraceID(r.Context()),
			})
			return
		}
		HandleAPIError(w, r, err, "An error occurred during login")
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Status:      "success",
		AccessToken: token,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		User: UserSummary{
			ID:    userID,
			Email: domain.NormalizeEmail(req.Email),
		},
	})
}
