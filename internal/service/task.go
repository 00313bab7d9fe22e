package service

import (
	"context"
	"fmt"

	"task-management/internal/apperror"
	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskEventType string

const (
	TaskCreated TaskEventType = "created"
	TaskUpdated TaskEventType = "updated"
	TaskDeleted TaskEventType = "deleted"
)

type TaskEvent struct {
	Type TaskEventType `json:"type"`
	Task models.Task   `json:"task"`
}

// Notifier receives task events for delivery to the owner only.
type Notifier interface {
	Publish(owner uuid.UUID, event TaskEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(uuid.UUID, TaskEvent) {}

// TaskService runs task operations on behalf of an authenticated owner. Every
// call is scoped by owner.ID; a foreign task is reported exactly like a
// missing one.
type TaskService struct {
	tasks    repository.TaskStore
	notifier Notifier
	log      *logger.Loggers
}

// NewTaskService builds the service. notifier may be nil.
func NewTaskService(tasks repository.TaskStore, notifier Notifier, log *logger.Loggers) *TaskService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &TaskService{tasks: tasks, notifier: notifier, log: log}
}

func taskNotFound(id string) error {
	return apperror.NotFound(fmt.Sprintf("Task with ID %q not found", id))
}

func (s *TaskService) GetTasks(ctx context.Context, filter models.TaskFilter, owner models.User) ([]models.Task, error) {
	tasks, err := s.tasks.List(ctx, filter, owner.ID)
	if err != nil {
		s.log.Error.Error("Error fetching tasks", zap.String("user_id", owner.ID.String()), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

// GetTaskByID turns "absent" into a not-found error. An id that is not a UUID
// cannot name any task and is reported the same way.
func (s *TaskService) GetTaskByID(ctx context.Context, id string, owner models.User) (models.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		s.log.Error.Error("Task not found", zap.String("task_id", id))
		return models.Task{}, taskNotFound(id)
	}
	task, err := s.tasks.FindOne(ctx, taskID, owner.ID)
	if err != nil {
		s.log.Error.Error("Error fetching task", zap.String("task_id", id), zap.Error(err))
		return models.Task{}, apperror.Internal(err)
	}
	if task == nil {
		s.log.Error.Error("Task not found", zap.String("task_id", id))
		return models.Task{}, taskNotFound(id)
	}
	return *task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, req models.CreateTaskRequest, owner models.User) (models.Task, error) {
	task, err := s.tasks.Create(ctx, req.Title, req.Description, owner.ID)
	if err != nil {
		s.log.Error.Error("Error creating task", zap.Error(err))
		return models.Task{}, apperror.Internal(err)
	}
	s.log.Audit.Info("Task created successfully", zap.String("task_id", task.ID.String()))
	s.notifier.Publish(owner.ID, TaskEvent{Type: TaskCreated, Task: task})
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string, owner models.User) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return taskNotFound(id)
	}
	n, err := s.tasks.DeleteOne(ctx, taskID, owner.ID)
	if err != nil {
		s.log.Error.Error("Error deleting task", zap.String("task_id", id), zap.Error(err))
		return apperror.Internal(err)
	}
	if n == 0 {
		s.log.Error.Error("Task not found", zap.String("task_id", id))
		return taskNotFound(id)
	}
	s.log.Audit.Info("Task deleted", zap.String("task_id", id))
	s.notifier.Publish(owner.ID, TaskEvent{Type: TaskDeleted, Task: models.Task{ID: taskID, Owner: owner.ID}})
	return nil
}

// UpdateTaskStatus allows every transition, including to the current status.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus, owner models.User) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, apperror.Validation(fmt.Sprintf("status %q is invalid", status), nil)
	}
	task, err := s.GetTaskByID(ctx, id, owner)
	if err != nil {
		return models.Task{}, err
	}
	task.Status = status
	if err := s.tasks.Save(ctx, task); err != nil {
		s.log.Error.Error("Error updating task", zap.String("task_id", id), zap.Error(err))
		return models.Task{}, apperror.Internal(err)
	}
	s.log.Audit.Info("Task updated", zap.String("task_id", id), zap.String("status", string(status)))
	s.notifier.Publish(owner.ID, TaskEvent{Type: TaskUpdated, Task: task})
	return task, nil
}
