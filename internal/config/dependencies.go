// Package config wires the application's components from configs.Config.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-management/configs"
	"task-management/internal/repository"
	"task-management/internal/repository/cache"
	"task-management/internal/repository/postgres"
	"task-management/internal/repository/sqlite"
	"task-management/internal/service"
	"task-management/internal/validation"
	"task-management/internal/websocket"
	"task-management/pkg/crypto"
	"task-management/pkg/database"
	"task-management/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Dependencies holds everything the HTTP layer needs. Nothing here is
// global; build one per process (or per test) with NewDependencies.
type Dependencies struct {
	Config   configs.Config
	Log      *logger.Loggers
	DB       *sql.DB
	Redis    *redis.Client
	Validate *validator.Validate

	Credentials *service.CredentialStore
	Tokens      *service.TokenService
	Resolver    *service.Resolver
	Tasks       *service.TaskService
	Hub         *websocket.Hub
}

// NewDependencies connects storage, creates the schema and builds the
// services. The caller runs Hub and must call Close.
func NewDependencies(ctx context.Context, cfg configs.Config, log *logger.Loggers) (*Dependencies, error) {
	d := &Dependencies{Config: cfg, Log: log, Validate: validation.New()}

	users, tasks, err := d.connectStorage(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.RedisEnabled {
		d.Redis, err = database.ConnectRedis(ctx, cfg)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		log.System.Info("Redis Connected")
		tasks = cache.NewTaskStore(tasks, d.Redis, cfg.RedisCacheTTL, log)
	}

	hasher, err := crypto.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Credentials, err = service.NewCredentialStore(ctx, users, hasher, d.Validate, log)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Tokens, err = service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Resolver = service.NewResolver(d.Tokens, d.Credentials, log)
	d.Hub = websocket.NewHub(log)
	d.Tasks = service.NewTaskService(tasks, d.Hub, log)
	return d, nil
}

func (d *Dependencies) connectStorage(ctx context.Context) (repository.UserStore, repository.TaskStore, error) {
	var err error
	switch d.Config.DBDriver {
	case "sqlite":
		d.DB, err = database.ConnectSQLite(ctx, d.Config.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.CreateTableIfNotExists(ctx, d.DB); err != nil {
			_ = d.DB.Close()
			return nil, nil, fmt.Errorf("create tables: %w", err)
		}
		d.Log.System.Info("Database Connected", zap.String("driver", "sqlite"), zap.String("path", d.Config.SQLitePath))
		return sqlite.NewUserStore(d.DB), sqlite.NewTaskStore(d.DB), nil
	case "postgres":
		d.DB, err = database.ConnectDB(ctx, d.Config)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.CreateTableIfNotExists(ctx, d.DB); err != nil {
			_ = d.DB.Close()
			return nil, nil, fmt.Errorf("create tables: %w", err)
		}
		d.Log.System.Info("Database Connected", zap.String("driver", "postgres"))
		return postgres.NewUserStore(d.DB), postgres.NewTaskStore(d.DB), nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", d.Config.DBDriver)
	}
}

func (d *Dependencies) Close() error {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}
