package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Script-GH/Ai-tutor/internal/domain"
	"github.com/Script-GH/Ai-tutor/internal/platform/logger"
	"github.com/Script-GH/Ai-tutor/internal/store"
)

// CredentialService registers accounts and verifies login credentials.
type CredentialService interface {
	// Register creates an account and returns its id. It fails with
	// ErrInvalidInput or ErrEmailTaken.
	Register(ctx context.Context, email, password string) (uuid.UUID, error)

	// Verify returns the user id for matching credentials, or ErrInvalidCredentials.
	Verify(ctx context.Context, email, password string) (uuid.UUID, error)
}

// userTxFn runs fn with a user store bound to one transaction.
type userTxFn func(ctx context.Context, fn func(ctx context.Context, users store.UserStore) error) error

type credentialService struct {
	users  store.UserStore
	hasher PasswordHasher
	inTx   userTxFn
	logger *slog.Logger
}

var _ CredentialService = (*credentialService)(nil)

// NewCredentialService creates a CredentialService backed by userStore.
// Registration runs inside a transaction on db.
func NewCredentialService(
	userStore store.UserStore,
	db *sql.DB,
	hasher PasswordHasher,
	logger *slog.Logger,
) CredentialService {
	inTx := func(ctx context.Context, fn func(ctx context.Context, users store.UserStore) error) error {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, userStore.WithTx(tx))
		})
	}
	return newCredentialService(userStore, hasher, inTx, logger)
}

func newCredentialService(
	userStore store.UserStore,
	hasher PasswordHasher,
	inTx userTxFn,
	logger *slog.Logger,
) *credentialService {
	return &credentialService{
		users:  userStore,
		hasher: hasher,
		inTx:   inTx,
		logger: logger.With("component", "credential_service"),
	}
}

// Register implements CredentialService.
func (s *credentialService) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := domain.ValidatePassword(password); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return uuid.Nil, err
	}

	user, err := domain.NewUser(email, hash)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	err = s.inTx(ctx, func(ctx context.Context, users store.UserStore) error {
		// Advisory check; the unique index is what decides concurrent races.
		if _, err := users.GetByEmail(ctx, email); err == nil {
			return store.ErrEmailExists
		} else if !errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration for existing email rejected")
			return uuid.Nil, ErrEmailTaken
		}
		log.Error("failed to create user", "error", err)
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user.ID, nil
}

// Verify implements CredentialService.
func (s *credentialService) Verify(ctx context.Context, email, password string) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if email == "" || password == "" {
		return uuid.Nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return uuid.Nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user", "error", err)
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", "user_id", user.ID)
		return uuid.Nil, ErrInvalidCredentials
	}

	return user.ID, nil
}
