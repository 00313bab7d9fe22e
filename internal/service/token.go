package service

import (
	"errors"
	"time"

	"task-management/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL applies when NewTokenService is given a non-positive ttl.
const DefaultTokenTTL = 3600 * time.Second

// ErrMissingSecret is returned at construction when no signing secret is set.
var ErrMissingSecret = errors.New("JWT secret is not defined")

// Claims is the signed payload of an access token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens. It holds no state
// beyond its configuration and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for username valid for the configured ttl.
func (s *TokenService) Issue(username string) (string, error) {
	now := s.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. A token is still valid at
// exactly its exp instant and expired once now is past it; jwt treats
// now == exp as expired, hence the one-nanosecond leeway. Strict base64
// decoding makes every single-byte change to the token a failure, including
// changes that only touch the unused trailing bits of the signature.
func (s *TokenService) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(time.Nanosecond),
	)
	if err != nil {
		return Claims{}, apperror.Unauthorized("", err)
	}
	if !parsed.Valid || claims.Username == "" {
		return Claims{}, apperror.Unauthorized("", nil)
	}
	return claims, nil
}
