package service

import (
	"context"
	"sync"
	"testing"

	"task-management/internal/apperror"
	"task-management/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	owner uuid.UUID
	event TaskEvent
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(owner uuid.UUID, event TaskEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{owner: owner, event: event})
}

func (n *recordingNotifier) all() []published {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]published(nil), n.events...)
}

type taskFixture struct {
	svc      *TaskService
	notifier *recordingNotifier
	alice    models.User
	bob      models.User
}

func newTaskFixture(t *testing.T) taskFixture {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()

	register := func(name string) models.User {
		_, err := env.creds.Register(ctx, name, "Passw0rd!")
		require.NoError(t, err)
		user, err := env.creds.FindByUsername(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, user)
		return *user
	}

	notifier := &recordingNotifier{}
	return taskFixture{
		svc:      NewTaskService(env.tasks, notifier, env.log),
		notifier: notifier,
		alice:    register("alice"),
		bob:      register("bobby"),
	}
}

func TestCreateTask(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, models.CreateTaskRequest{Title: "Buy milk", Description: "2 litres"}, f.alice)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Equal(t, f.alice.ID, task.Owner)

	got, err := f.svc.GetTaskByID(ctx, task.ID.String(), f.alice)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	events := f.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, f.alice.ID, events[0].owner)
	assert.Equal(t, TaskCreated, events[0].event.Type)
	assert.Equal(t, task.ID, events[0].event.Task.ID)
}

func TestTaskOwnershipIsolation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, models.CreateTaskRequest{Title: "secret", Description: "alice only"}, f.alice)
	require.NoError(t, err)
	id := task.ID.String()

	list, err := f.svc.GetTasks(ctx, models.TaskFilter{}, f.bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.GetTaskByID(ctx, id, f.bob)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.UpdateTaskStatus(ctx, id, models.TaskStatusDone, f.bob)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.svc.DeleteTask(ctx, id, f.bob)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := f.svc.GetTaskByID(ctx, id, f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOpen, got.Status, "foreign update must not apply")

	for _, p := range f.notifier.all() {
		assert.Equal(t, f.alice.ID, p.owner)
	}
}

func TestGetTaskByIDNotFound(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		_, err := f.svc.GetTaskByID(ctx, id, f.alice)
		require.ErrorIs(t, err, apperror.ErrNotFound, "id %q", id)
	}

	missing := uuid.NewString()
	_, err := f.svc.GetTaskByID(ctx, missing, f.alice)
	assert.Equal(t, `Task with ID "`+missing+`" not found`, apperror.PublicMessage(err))
}

func TestGetTasksFilters(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	create := func(title, description string) models.Task {
		task, err := f.svc.CreateTask(ctx, models.CreateTaskRequest{Title: title, Description: description}, f.alice)
		require.NoError(t, err)
		return task
	}
	groceries := create("Groceries", "milk and eggs")
	laundry := create("Laundry", "whites")
	report := create("Report", "quarterly milk numbers")

	_, err := f.svc.UpdateTaskStatus(ctx, laundry.ID.String(), models.TaskStatusDone, f.alice)
	require.NoError(t, err)

	ids := func(tasks []models.Task) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	all, err := f.svc.GetTasks(ctx, models.TaskFilter{}, f.alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{groceries.ID, laundry.ID, report.ID}, ids(all))

	done, err := f.svc.GetTasks(ctx, models.TaskFilter{Status: models.TaskStatusDone}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{laundry.ID}, ids(done))

	milk, err := f.svc.GetTasks(ctx, models.TaskFilter{Search: "milk"}, f.alice)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{groceries.ID, report.ID}, ids(milk))

	both, err := f.svc.GetTasks(ctx, models.TaskFilter{Status: models.TaskStatusOpen, Search: "Report"}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{report.ID}, ids(both))

	none, err := f.svc.GetTasks(ctx, models.TaskFilter{Search: "nothing like this"}, f.alice)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteTask(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, models.CreateTaskRequest{Title: "t", Description: "d"}, f.alice)
	require.NoError(t, err)
	id := task.ID.String()

	require.NoError(t, f.svc.DeleteTask(ctx, id, f.alice))

	_, err = f.svc.GetTaskByID(ctx, id, f.alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.svc.DeleteTask(ctx, id, f.alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.svc.DeleteTask(ctx, "not-a-uuid", f.alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	events := f.notifier.all()
	require.Len(t, events, 2)
	assert.Equal(t, TaskDeleted, events[1].event.Type)
	assert.Equal(t, task.ID, events[1].event.Task.ID)
}

func TestUpdateTaskStatus(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, models.CreateTaskRequest{Title: "t", Description: "d"}, f.alice)
	require.NoError(t, err)
	id := task.ID.String()

	for _, status := range []models.TaskStatus{models.TaskStatusInProgress, models.TaskStatusDone, models.TaskStatusDone, models.TaskStatusOpen} {
		updated, err := f.svc.UpdateTaskStatus(ctx, id, status, f.alice)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.Equal(t, task.Title, updated.Title)

		stored, err := f.svc.GetTaskByID(ctx, id, f.alice)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}

	_, err = f.svc.UpdateTaskStatus(ctx, id, "ARCHIVED", f.alice)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.UpdateTaskStatus(ctx, uuid.NewString(), models.TaskStatusDone, f.alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var updates int
	for _, p := range f.notifier.all() {
		if p.event.Type == TaskUpdated {
			updates++
		}
	}
	assert.Equal(t, 4, updates)
}

func TestNewTaskServiceNilNotifier(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTaskService(env.tasks, nil, env.log)
	assert.NotNil(t, svc.notifier)
}
