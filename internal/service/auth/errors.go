package auth

import "errors"

// Token validation errors.
var (
	// ErrInvalidToken indicates a token with a bad signature, an unexpected
	// signing algorithm or unusable claims.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates that the token's exp claim has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMalformedToken indicates a string that does not parse as a JWT.
	ErrMalformedToken = errors.New("malformed authentication token")

	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a request that presented no token.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidAuthFormat indicates an Authorization header that is not "Bearer <token>".
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
)

// Credential errors.
var (
	// ErrEmailTaken indicates a registration for an address that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidInput wraps email or password validation failures.
	ErrInvalidInput = errors.New("invalid credentials input")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
