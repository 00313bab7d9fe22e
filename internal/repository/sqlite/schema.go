// Package sqlite implements the user and task stores over an embedded SQLite
// database (modernc.org/sqlite). It backs local development and the HTTP
// tests; queries mirror the postgres package with SQLite placeholders.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const createTablesQuery = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users (id),
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('OPEN', 'IN_PROGRESS', 'DONE'))
);

CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id);
`

const dropTablesQuery = `
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS users;
`

func CreateTableIfNotExists(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTablesQuery); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, dropTablesQuery); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
