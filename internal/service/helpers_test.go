package service

import (
	"context"
	"path/filepath"
	"testing"

	"task-management/internal/repository/sqlite"
	"task-management/pkg/crypto"
	"task-management/pkg/database"
	"task-management/pkg/logger"
	"task-management/pkg/logger/loggertest"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	creds *CredentialStore
	users *sqlite.UserStore
	tasks *sqlite.TaskStore
	log   *logger.Loggers
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.ConnectSQLite(ctx, filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.CreateTableIfNotExists(ctx, db))

	hasher, err := crypto.NewPasswordHasher(bcrypt.MinCost, 0)
	require.NoError(t, err)

	log := loggertest.New(t)
	users := sqlite.NewUserStore(db)
	creds, err := NewCredentialStore(ctx, users, hasher, nil, log)
	require.NoError(t, err)

	return testEnv{creds: creds, users: users, tasks: sqlite.NewTaskStore(db), log: log}
}
