package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const createTablesQuery = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username VARCHAR(20) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users (id),
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    status VARCHAR(20) NOT NULL CHECK (status IN ('OPEN', 'IN_PROGRESS', 'DONE'))
);

CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id);
`

const dropTablesQuery = `
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS users;
`

// CreateTableIfNotExists creates the users and tasks tables.
// The UNIQUE constraint on users.username is what makes concurrent signups
// with the same name safe.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTablesQuery); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// DeleteAllTable drops both tables. Used by tests.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, dropTablesQuery); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
