package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"task-management/internal/apperror"
	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/validation"
	"task-management/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invalidCredentialsMessage = "Invalid credentials"

// PasswordHasher is satisfied by crypto.PasswordHasher.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) (bool, error)
}

// CredentialStore registers users and checks their passwords.
type CredentialStore struct {
	users    repository.UserStore
	hasher   PasswordHasher
	validate *validator.Validate
	log      *logger.Loggers

	// dummyHash is compared against when the username is unknown so that
	// both failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewCredentialStore(ctx context.Context, users repository.UserStore, hasher PasswordHasher, validate *validator.Validate, log *logger.Loggers) (*CredentialStore, error) {
	if validate == nil {
		validate = validation.New()
	}
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate dummy password: %w", err)
	}
	dummy, err := hasher.Hash(ctx, hex.EncodeToString(seed))
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &CredentialStore{
		users:     users,
		hasher:    hasher,
		validate:  validate,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Register validates the credentials, hashes the password and stores the
// user. Uniqueness is left entirely to the storage engine: of several
// concurrent registrations for one name exactly one succeeds.
func (s *CredentialStore) Register(ctx context.Context, username, password string) (uuid.UUID, error) {
	creds := models.AuthCredentials{Username: username, Password: password}
	if err := s.validate.Struct(creds); err != nil {
		s.log.Audit.Warn("Validation error during signup", zap.String("username", username), zap.Error(err))
		return uuid.Nil, apperror.Validation(validation.Message(err), err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.log.Error.Error("Error hashing password", zap.Error(err))
		return uuid.Nil, apperror.Internal(err)
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			s.log.Security.Warn("Duplicate username", zap.String("username", username))
			return uuid.Nil, apperror.Conflict(fmt.Sprintf("Username %q already exists", username), err)
		}
		s.log.Error.Error("Error creating user", zap.String("username", username), zap.Error(err))
		return uuid.Nil, apperror.Internal(err)
	}

	s.log.Audit.Info("User registered successfully", zap.String("user_id", user.ID.String()))
	return user.ID, nil
}

// VerifyCredentials returns the user when password matches. Unknown user and
// wrong password produce the same error.
func (s *CredentialStore) VerifyCredentials(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error.Error("Error fetching user", zap.Error(err))
		return models.User{}, apperror.Internal(err)
	}

	hash := s.dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	ok, err := s.hasher.Compare(ctx, hash, password)
	if err != nil {
		s.log.Error.Error("Error comparing password", zap.Error(err))
		return models.User{}, apperror.Internal(err)
	}

	if user == nil || !ok {
		s.log.Security.Warn("Invalid credentials", zap.String("username", username))
		return models.User{}, apperror.Unauthorized(invalidCredentialsMessage, nil)
	}
	return *user, nil
}

// FindByUsername returns nil, nil when the user does not exist.
func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error.Error("Error fetching user", zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return user, nil
}
