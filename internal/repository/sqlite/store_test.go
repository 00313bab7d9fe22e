package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"task-management/internal/repository/repotest"
	"task-management/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) repotest.Stores {
	t.Helper()
	ctx := context.Background()
	db, err := database.ConnectSQLite(ctx, filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, CreateTableIfNotExists(ctx, db))

	return repotest.Stores{Users: NewUserStore(db), Tasks: NewTaskStore(db)}
}

func TestStores(t *testing.T) {
	repotest.Run(t, newTestStores)
}

func TestCreateTableIfNotExistsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.ConnectSQLite(ctx, filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, CreateTableIfNotExists(ctx, db))
	require.NoError(t, CreateTableIfNotExists(ctx, db))
	require.NoError(t, DeleteAllTable(ctx, db))
}

func TestTaskRequiresExistingOwner(t *testing.T) {
	s := newTestStores(t)

	_, err := s.Tasks.Create(context.Background(), "orphan", "no owner", uuid.New())
	require.Error(t, err, "foreign key on tasks.user_id must be enforced")
}
