package handlers

import (
	"context"

	"task-management/internal/api/response"
	"task-management/internal/middleware"
	"task-management/internal/models"
	"task-management/internal/validation"
	"task-management/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Tasks is satisfied by *service.TaskService.
type Tasks interface {
	GetTasks(ctx context.Context, filter models.TaskFilter, owner models.User) ([]models.Task, error)
	GetTaskByID(ctx context.Context, id string, owner models.User) (models.Task, error)
	CreateTask(ctx context.Context, req models.CreateTaskRequest, owner models.User) (models.Task, error)
	DeleteTask(ctx context.Context, id string, owner models.User) error
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus, owner models.User) (models.Task, error)
}

// TaskHandler serves /tasks. Every route sits behind middleware.RequireAuth.
type TaskHandler struct {
	tasks    Tasks
	validate *validator.Validate
	log      *logger.Loggers
}

func NewTaskHandler(tasks Tasks, validate *validator.Validate, log *logger.Loggers) *TaskHandler {
	if validate == nil {
		validate = validation.New()
	}
	return &TaskHandler{tasks: tasks, validate: validate, log: log}
}

func (h *TaskHandler) owner(c *fiber.Ctx) (models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.log.Security.Warn("Task route reached without a user", zap.String("url", c.OriginalURL()))
		return models.User{}, fiber.ErrUnauthorized
	}
	return user, nil
}

func (h *TaskHandler) invalid(c *fiber.Ctx, err error) error {
	h.log.Audit.Warn("Validation error", zap.String("url", c.OriginalURL()), zap.Error(err))
	return response.Fail(c, fiber.StatusBadRequest, validation.Message(err))
}

// ListTasks handles GET /tasks?status=&search=. Either parameter may be
// omitted, but one that is present must not be empty.
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	user, err := h.owner(c)
	if err != nil {
		return err
	}
	args := c.Context().QueryArgs()
	for _, key := range []string{"status", "search"} {
		if args.Has(key) && len(args.Peek(key)) == 0 {
			return response.Fail(c, fiber.StatusBadRequest, key+" should not be empty")
		}
	}
	var filter models.TaskFilter
	if err := c.QueryParser(&filter); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.validate.Struct(filter); err != nil {
		return h.invalid(c, err)
	}
	h.log.Request.Info("Get tasks request received", zap.String("user_id", user.ID.String()))

	tasks, err := h.tasks.GetTasks(c.UserContext(), filter, user)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	user, err := h.owner(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.GetTaskByID(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	user, err := h.owner(c)
	if err != nil {
		return err
	}
	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Error.Error("Bad request in create task", zap.Error(err))
		return response.Fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.validate.Struct(req); err != nil {
		return h.invalid(c, err)
	}
	h.log.Request.Info("Create task request received", zap.String("user_id", user.ID.String()))

	task, err := h.tasks.CreateTask(c.UserContext(), req, user)
	if err != nil {
		return response.Error(c, err)
	}
	h.log.Request.Info("Create task request processed", zap.String("task_id", task.ID.String()))
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTaskStatus handles PATCH /tasks/:id/status.
func (h *TaskHandler) UpdateTaskStatus(c *fiber.Ctx) error {
	user, err := h.owner(c)
	if err != nil {
		return err
	}
	var req models.UpdateTaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Error.Error("Bad request in update task", zap.Error(err))
		return response.Fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if err := h.validate.Struct(req); err != nil {
		return h.invalid(c, err)
	}

	task, err := h.tasks.UpdateTaskStatus(c.UserContext(), c.Params("id"), req.Status, user)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(task)
}

// DeleteTask answers 204 with no body.
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	user, err := h.owner(c)
	if err != nil {
		return err
	}
	if err := h.tasks.DeleteTask(c.UserContext(), c.Params("id"), user); err != nil {
		return response.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
