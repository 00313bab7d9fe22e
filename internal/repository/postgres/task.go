package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"task-management/internal/models"
	"task-management/internal/repository"

	"github.com/google/uuid"
)

const taskColumns = "id, title, description, status, user_id"

type TaskStore struct {
	db *sql.DB
}

var _ repository.TaskStore = (*TaskStore)(nil)

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.Owner)
	return task, err
}

// List builds the WHERE clause from the filter. Search uses strpos so the
// match is a plain case-sensitive substring; LIKE wildcards in the search
// term have no special meaning.
func (s *TaskStore) List(ctx context.Context, filter models.TaskFilter, owner uuid.UUID) ([]models.Task, error) {
	var b strings.Builder
	b.WriteString("SELECT " + taskColumns + " FROM tasks WHERE user_id = $1")
	args := []any{owner}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&b, " AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		fmt.Fprintf(&b, " AND (strpos(title, $%d) > 0 OR strpos(description, $%d) > 0)", len(args), len(args))
	}
	b.WriteString(" ORDER BY id")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) Create(ctx context.Context, title, description string, owner uuid.UUID) (models.Task, error) {
	task := models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      models.TaskStatusOpen,
		Owner:       owner,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (id, user_id, title, description, status) VALUES ($1, $2, $3, $4, $5)",
		task.ID, task.Owner, task.Title, task.Description, string(task.Status))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (s *TaskStore) FindOne(ctx context.Context, id, owner uuid.UUID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2", id, owner)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &task, nil
}

func (s *TaskStore) DeleteOne(ctx context.Context, id, owner uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, owner)
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}
	return n, nil
}

func (s *TaskStore) Save(ctx context.Context, task models.Task) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET status = $1 WHERE id = $2 AND user_id = $3",
		string(task.Status), task.ID, task.Owner)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}
