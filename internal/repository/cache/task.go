// Package cache wraps a TaskStore with a Redis read-through cache for point
// lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTTL = time.Hour

// A write leaves a tombstone under the key instead of deleting it. Fills use
// SET NX, so a lookup that read the row before the write cannot put the old
// version back while the tombstone lives.
const (
	tombstone    = "-"
	tombstoneTTL = 5 * time.Second
)

// TaskStore caches FindOne results under task:<owner>:<id>. The owner is
// part of the key, so a cached entry can only ever be served back to the
// user it belongs to. Redis failures are logged and never fail the call.
type TaskStore struct {
	next   repository.TaskStore
	client *redis.Client
	ttl    time.Duration
	log    *logger.Loggers
}

var _ repository.TaskStore = (*TaskStore)(nil)

func NewTaskStore(next repository.TaskStore, client *redis.Client, ttl time.Duration, log *logger.Loggers) *TaskStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TaskStore{next: next, client: client, ttl: ttl, log: log}
}

func cacheKey(id, owner uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", owner, id)
}

func (s *TaskStore) List(ctx context.Context, filter models.TaskFilter, owner uuid.UUID) ([]models.Task, error) {
	return s.next.List(ctx, filter, owner)
}

func (s *TaskStore) Create(ctx context.Context, title, description string, owner uuid.UUID) (models.Task, error) {
	return s.next.Create(ctx, title, description, owner)
}

func (s *TaskStore) FindOne(ctx context.Context, id, owner uuid.UUID) (*models.Task, error) {
	key := cacheKey(id, owner)

	cached, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil && string(cached) == tombstone:
	case err == nil:
		var task models.Task
		if err := json.Unmarshal(cached, &task); err == nil {
			// Owner is not serialized; the key already proves it.
			task.Owner = owner
			return &task, nil
		}
		s.log.Error.Error("Error decoding cached task", zap.String("key", key), zap.Error(err))
	case !errors.Is(err, redis.Nil):
		s.log.Error.Error("Error reading task cache", zap.String("key", key), zap.Error(err))
	}

	task, err := s.next.FindOne(ctx, id, owner)
	if err != nil || task == nil {
		return task, err
	}

	taskJSON, err := json.Marshal(task)
	if err != nil {
		s.log.Error.Error("Error encoding task to JSON", zap.Error(err))
		return task, nil
	}
	if err := s.client.SetNX(ctx, key, taskJSON, s.ttl).Err(); err != nil {
		s.log.Error.Error("Error caching task", zap.String("key", key), zap.Error(err))
	}
	return task, nil
}

func (s *TaskStore) DeleteOne(ctx context.Context, id, owner uuid.UUID) (int64, error) {
	n, err := s.next.DeleteOne(ctx, id, owner)
	s.invalidate(ctx, id, owner)
	return n, err
}

func (s *TaskStore) Save(ctx context.Context, task models.Task) error {
	err := s.next.Save(ctx, task)
	s.invalidate(ctx, task.ID, task.Owner)
	return err
}

func (s *TaskStore) invalidate(ctx context.Context, id, owner uuid.UUID) {
	key := cacheKey(id, owner)
	if err := s.client.Set(ctx, key, tombstone, tombstoneTTL).Err(); err != nil {
		s.log.Error.Error("Error invalidating task cache", zap.String("key", key), zap.Error(err))
	}
}
