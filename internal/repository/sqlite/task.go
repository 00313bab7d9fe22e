package sqlite

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

// List filters with instr, which is a case-sensitive substring test.
func (s *TaskStore) List(ctx context.Context, filter models.TaskFilter, owner uuid.UUID) ([]models.Task, error) {
	var b strings.Builder
	b.WriteString("SELECT " + taskColumns + " FROM tasks WHERE user_id = ?")
	args := []any{owner.String()}

	if filter.Status != "" {
		b.WriteString(" AND status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Search != "" {
		b.WriteString(" AND (instr(title, ?) > 0 OR instr(description, ?) > 0)")
		args = append(args, filter.Search, filter.Search)
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
		"INSERT INTO tasks (id, user_id, title, description, status) VALUES (?, ?, ?, ?, ?)",
		task.ID.String(), task.Owner.String(), task.Title, task.Description, string(task.Status))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (s *TaskStore) FindOne(ctx context.Context, id, owner uuid.UUID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id.String(), owner.String())
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
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id.String(), owner.String())
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
		"UPDATE tasks SET status = ? WHERE id = ? AND user_id = ?",
		string(task.Status), task.ID.String(), task.Owner.String())
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}
