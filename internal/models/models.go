package models

import (
	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
}

// TaskStatus is one of OPEN, IN_PROGRESS or DONE. Any status may move to any
// other, including itself.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	// Owner is set at creation and never reassigned. It is not serialized.
	Owner uuid.UUID `json:"-"`
}

// TaskFilter narrows List. Zero values mean "no filter".
type TaskFilter struct {
	Status TaskStatus `query:"status" validate:"omitempty,task_status"`
	Search string     `query:"search"`
}

// AuthCredentials is the signup / signin request body.
type AuthCredentials struct {
	Username string `json:"username" validate:"required,min=4,max=20"`
	Password string `json:"password" validate:"required,min=8,max=32,password"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status" validate:"required,task_status"`
}

type SignInResponse struct {
	AccessToken string `json:"accessToken"`
}
