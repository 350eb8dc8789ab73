package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates signed access tokens.
type JWTService interface {
	// GenerateToken creates a signed token for userID and returns it with its expiry.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error)

	// ValidateToken checks the signature and time claims of tokenString.
	// It returns ErrExpiredToken, ErrMalformedToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
