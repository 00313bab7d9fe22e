package service

import (
	"context"
	"strings"

	"task-management/internal/apperror"
	"task-management/internal/models"
	"task-management/pkg/logger"

	"go.uber.org/zap"
)

// UserFinder loads a user by name; CredentialStore implements it.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenVerifier is satisfied by *TokenService.
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// Resolver turns an Authorization header into the calling user. It is the
// only place a caller identity enters the system.
type Resolver struct {
	tokens TokenVerifier
	users  UserFinder
	log    *logger.Loggers
}

func NewResolver(tokens TokenVerifier, users UserFinder, log *logger.Loggers) *Resolver {
	return &Resolver{tokens: tokens, users: users, log: log}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Resolve fails with an unauthorized error when the header is missing or
// malformed, the token does not verify, or its user no longer exists.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (models.User, error) {
	if authorization == "" {
		return models.User{}, apperror.Unauthorized("No token provided", nil)
	}
	raw, ok := BearerToken(authorization)
	if !ok {
		r.log.Security.Warn("Invalid token format")
		return models.User{}, apperror.Unauthorized("Invalid token format", nil)
	}

	claims, err := r.tokens.Verify(raw)
	if err != nil {
		r.log.Security.Warn("Invalid token", zap.Error(err))
		return models.User{}, apperror.Unauthorized("Invalid token", err)
	}

	user, err := r.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		r.log.Security.Warn("Token for unknown user", zap.String("username", claims.Username))
		return models.User{}, apperror.Unauthorized("Invalid token", nil)
	}
	return *user, nil
}
