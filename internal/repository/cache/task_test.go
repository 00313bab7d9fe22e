package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"task-management/internal/models"
	"task-management/internal/repository/repotest"
	"task-management/internal/repository/sqlite"
	"task-management/pkg/database"
	"task-management/pkg/logger/loggertest"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mr     *miniredis.Miniredis
	stores repotest.Stores
	inner  *sqlite.TaskStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.ConnectSQLite(ctx, filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.CreateTableIfNotExists(ctx, db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := sqlite.NewTaskStore(db)
	return fixture{
		mr:    mr,
		inner: inner,
		stores: repotest.Stores{
			Users: sqlite.NewUserStore(db),
			Tasks: NewTaskStore(inner, client, time.Minute, loggertest.New(t)),
		},
	}
}

func TestStores(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Stores { return newFixture(t).stores })
}

func TestFindOneFillsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := repotest.MustUser(t, f.stores.Users, "alice")

	task, err := f.stores.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)

	key := cacheKey(task.ID, alice.ID)
	assert.False(t, f.mr.Exists(key))

	found, err := f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, f.mr.Exists(key))
	assert.Equal(t, time.Minute, f.mr.TTL(key))

	// A second read is served from Redis even when the row is gone underneath.
	_, err = f.inner.DeleteOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	cached, err := f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, task, *cached)
}

func TestCacheIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := repotest.MustUser(t, f.stores.Users, "alice")
	bob := repotest.MustUser(t, f.stores.Users, "bob1")

	task, err := f.stores.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)
	_, err = f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)

	found, err := f.stores.Tasks.FindOne(ctx, task.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.False(t, f.mr.Exists(cacheKey(task.ID, bob.ID)))
}

func cachedValue(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func TestSaveAndDeleteInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := repotest.MustUser(t, f.stores.Users, "alice")

	task, err := f.stores.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)
	key := cacheKey(task.ID, alice.ID)

	_, err = f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(key))

	task.Status = models.TaskStatusDone
	require.NoError(t, f.stores.Tasks.Save(ctx, task))
	assert.Equal(t, tombstone, cachedValue(t, f.mr, key))

	found, err := f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.TaskStatusDone, found.Status)
	assert.Equal(t, tombstone, cachedValue(t, f.mr, key), "no fill while the tombstone lives")

	f.mr.FastForward(tombstoneTTL)
	_, err = f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, tombstone, cachedValue(t, f.mr, key))

	n, err := f.stores.Tasks.DeleteOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, tombstone, cachedValue(t, f.mr, key))

	found, err = f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

// interleavedStore runs between once the wrapped FindOne has read its row,
// reproducing a write that lands between a cache miss and its fill.
type interleavedStore struct {
	*sqlite.TaskStore
	between func()
}

func (s *interleavedStore) FindOne(ctx context.Context, id, owner uuid.UUID) (*models.Task, error) {
	task, err := s.TaskStore.FindOne(ctx, id, owner)
	if s.between != nil {
		between := s.between
		s.between = nil
		between()
	}
	return task, err
}

func TestWriteDuringMissIsNotCachedBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := repotest.MustUser(t, f.stores.Users, "alice")

	inner := &interleavedStore{TaskStore: f.inner}
	client := redis.NewClient(&redis.Options{Addr: f.mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewTaskStore(inner, client, time.Minute, loggertest.New(t))

	t.Run("delete", func(t *testing.T) {
		task, err := store.Create(ctx, "Buy milk", "2%", alice.ID)
		require.NoError(t, err)

		inner.between = func() {
			n, err := store.DeleteOne(ctx, task.ID, alice.ID)
			require.NoError(t, err)
			require.Equal(t, int64(1), n)
		}
		stale, err := store.FindOne(ctx, task.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, stale, "the racing read saw the row before the delete")

		found, err := store.FindOne(ctx, task.ID, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("save", func(t *testing.T) {
		task, err := store.Create(ctx, "Laundry", "whites", alice.ID)
		require.NoError(t, err)

		inner.between = func() {
			done := task
			done.Status = models.TaskStatusDone
			require.NoError(t, store.Save(ctx, done))
		}
		stale, err := store.FindOne(ctx, task.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, stale)
		assert.Equal(t, models.TaskStatusOpen, stale.Status)

		found, err := store.FindOne(ctx, task.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.TaskStatusDone, found.Status)
	})
}

func TestRedisDownFallsThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := repotest.MustUser(t, f.stores.Users, "alice")

	task, err := f.stores.Tasks.Create(ctx, "Buy milk", "2%", alice.ID)
	require.NoError(t, err)

	f.mr.Close()

	found, err := f.stores.Tasks.FindOne(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, task.ID, found.ID)

	task.Status = models.TaskStatusInProgress
	assert.NoError(t, f.stores.Tasks.Save(ctx, task))
}
