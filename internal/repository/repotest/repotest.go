// Package repotest holds the behavioural suite every UserStore / TaskStore
// implementation must pass. Backend packages call it from their own tests.
package repotest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"task-management/internal/models"
	"task-management/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stores is a fresh, empty pair of stores sharing one backing database.
type Stores struct {
	Users repository.UserStore
	Tasks repository.TaskStore
}

// Factory returns empty stores for one subtest.
type Factory func(t *testing.T) Stores

// Run executes the full suite.
func Run(t *testing.T, newStores Factory) {
	t.Run("UserCreateAndFind", func(t *testing.T) { testUserCreateAndFind(t, newStores(t)) })
	t.Run("UserDuplicate", func(t *testing.T) { testUserDuplicate(t, newStores(t)) })
	t.Run("UserDuplicateConcurrent", func(t *testing.T) { testUserDuplicateConcurrent(t, newStores(t)) })
	t.Run("TaskCreateAndFind", func(t *testing.T) { testTaskCreateAndFind(t, newStores(t)) })
	t.Run("TaskOwnerScoping", func(t *testing.T) { testTaskOwnerScoping(t, newStores(t)) })
	t.Run("TaskListFilters", func(t *testing.T) { testTaskListFilters(t, newStores(t)) })
	t.Run("TaskDeleteOne", func(t *testing.T) { testTaskDeleteOne(t, newStores(t)) })
	t.Run("TaskSave", func(t *testing.T) { testTaskSave(t, newStores(t)) })
}

// MustUser inserts a user and fails the test on error.
func MustUser(t *testing.T, users repository.UserStore, username string) models.User {
	t.Helper()
	u, err := users.Create(context.Background(), username, "$2a$04$notarealhashnotarealhashnotarealhashnotarealhashnotare")
	require.NoError(t, err)
	return u
}

func testUserCreateAndFind(t *testing.T, s Stores) {
	ctx := context.Background()
	created := MustUser(t, s.Users, "alice")
	assert.NotEqual(t, uuid.Nil, created.ID)

	found, err := s.Users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created, *found)

	missing, err := s.Users.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testUserDuplicate(t *testing.T, s Stores) {
	MustUser(t, s.Users, "alice")

	_, err := s.Users.Create(context.Background(), "alice", "other-hash")
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
}

func testUserDuplicateConcurrent(t *testing.T, s Stores) {
	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Users.Create(context.Background(), "racer", "hash")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, repository.ErrDuplicateUsername):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
}

func testTaskCreateAndFind(t *testing.T, s Stores) {
	ctx := context.Background()
	alice := MustUser(t, s.Users, "alice")

	task, err := s.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Equal(t, alice.ID, task.Owner)

	found, err := s.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, task, *found)

	missing, err := s.Tasks.FindOne(ctx, uuid.New(), alice.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testTaskOwnerScoping(t *testing.T, s Stores) {
	ctx := context.Background()
	alice := MustUser(t, s.Users, "alice")
	bob := MustUser(t, s.Users, "bob1")

	task, err := s.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)

	found, err := s.Tasks.FindOne(ctx, task.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	list, err := s.Tasks.List(ctx, models.TaskFilter{}, bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	stolen := task
	stolen.Owner = bob.ID
	stolen.Status = models.TaskStatusDone
	require.NoError(t, s.Tasks.Save(ctx, stolen))

	n, err := s.Tasks.DeleteOne(ctx, task.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	still, err := s.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, models.TaskStatusOpen, still.Status)
}

func testTaskListFilters(t *testing.T, s Stores) {
	ctx := context.Background()
	alice := MustUser(t, s.Users, "alice")
	bob := MustUser(t, s.Users, "bob1")

	create := func(owner uuid.UUID, title, desc string, status models.TaskStatus) models.Task {
		task, err := s.Tasks.Create(ctx, title, desc, owner)
		require.NoError(t, err)
		if status != models.TaskStatusOpen {
			task.Status = status
			require.NoError(t, s.Tasks.Save(ctx, task))
		}
		return task
	}

	open := create(alice.ID, "Buy milk", "2% from the corner shop", models.TaskStatusOpen)
	progress := create(alice.ID, "Write report", "quarterly numbers", models.TaskStatusInProgress)
	done := create(alice.ID, "Call mom", "about the milk order", models.TaskStatusDone)
	create(bob.ID, "Buy milk", "bob's milk", models.TaskStatusInProgress)

	ids := func(tasks []models.Task) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.TaskFilter
		want   []uuid.UUID
	}{
		{"no filter", models.TaskFilter{}, []uuid.UUID{open.ID, progress.ID, done.ID}},
		{"status", models.TaskFilter{Status: models.TaskStatusInProgress}, []uuid.UUID{progress.ID}},
		{"search title", models.TaskFilter{Search: "report"}, []uuid.UUID{progress.ID}},
		{"search title or description", models.TaskFilter{Search: "milk"}, []uuid.UUID{open.ID, done.ID}},
		{"search is case sensitive", models.TaskFilter{Search: "MILK"}, nil},
		{"search wildcard is literal", models.TaskFilter{Search: "%"}, []uuid.UUID{open.ID}},
		{"combined", models.TaskFilter{Status: models.TaskStatusDone, Search: "milk"}, []uuid.UUID{done.ID}},
		{"combined no match", models.TaskFilter{Status: models.TaskStatusInProgress, Search: "milk"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Tasks.List(ctx, tt.filter, alice.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.ElementsMatch(t, tt.want, ids(got))
			for _, task := range got {
				assert.Equal(t, alice.ID, task.Owner)
			}
		})
	}

	first, err := s.Tasks.List(ctx, models.TaskFilter{}, alice.ID)
	require.NoError(t, err)
	second, err := s.Tasks.List(ctx, models.TaskFilter{}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second), "ordering must be stable")
}

func testTaskDeleteOne(t *testing.T, s Stores) {
	ctx := context.Background()
	alice := MustUser(t, s.Users, "alice")
	task, err := s.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)

	n, err := s.Tasks.DeleteOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Tasks.DeleteOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	found, err := s.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func testTaskSave(t *testing.T, s Stores) {
	ctx := context.Background()
	alice := MustUser(t, s.Users, "alice")
	task, err := s.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)

	for _, status := range []models.TaskStatus{models.TaskStatusDone, models.TaskStatusDone, models.TaskStatusInProgress, models.TaskStatusOpen} {
		task.Status = status
		require.NoError(t, s.Tasks.Save(ctx, task))

		found, err := s.Tasks.FindOne(ctx, task.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, status, found.Status)
		assert.Equal(t, "Buy milk", found.Title)
	}
}
