package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-management/internal/models"
	"task-management/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index rejection.
const uniqueViolation = "23505"

type UserStore struct {
	db *sql.DB
}

var _ repository.UserStore = (*UserStore)(nil)

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (models.User, error) {
	user := models.User{ID: uuid.New(), Username: username, PasswordHash: passwordHash}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password) VALUES ($1, $2, $3)",
		user.ID, user.Username, user.PasswordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.User{}, fmt.Errorf("insert user: %w", repository.ErrDuplicateUsername)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}
