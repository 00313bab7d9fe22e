// Package repository defines the storage contracts for users and tasks.
//
// Implementations never report "not found" as an error: point lookups return
// a nil record and deletes return the number of affected rows. Deciding when
// absence is a failure belongs to the service layer.
package repository

import (
	"context"
	"errors"

	"task-management/internal/models"

	"github.com/google/uuid"
)

// ErrDuplicateUsername is returned by UserStore.Create when the storage
// engine's unique index on username rejects the insert.
var ErrDuplicateUsername = errors.New("username already exists")

type UserStore interface {
	// Create inserts a user with a freshly generated id.
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	// FindByUsername returns nil, nil when no user has that name.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// TaskStore persists tasks. Every method is scoped by owner; a task that
// belongs to someone else behaves exactly like one that does not exist.
type TaskStore interface {
	// List returns the owner's tasks matching filter, ordered by id. Never nil.
	List(ctx context.Context, filter models.TaskFilter, owner uuid.UUID) ([]models.Task, error)
	// Create inserts a new OPEN task.
	Create(ctx context.Context, title, description string, owner uuid.UUID) (models.Task, error)
	// FindOne returns nil, nil when the task is absent or not owned by owner.
	FindOne(ctx context.Context, id, owner uuid.UUID) (*models.Task, error)
	// DeleteOne returns the number of rows removed (0 or 1).
	DeleteOne(ctx context.Context, id, owner uuid.UUID) (int64, error)
	// Save overwrites the mutable fields of task, scoped by its id and owner.
	Save(ctx context.Context, task models.Task) error
}
