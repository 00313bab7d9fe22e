package configs

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string `env:"GO_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"3004"`

	// postgres or sqlite
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"tasks.db"`

	RedisEnabled  bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisCacheTTL time.Duration `env:"REDIS_CACHE_TTL" envDefault:"1h"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	// Token lifetime in seconds.
	JWTExpiresIn int `env:"JWT_EXPIRES_IN" envDefault:"3600"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
	// 0 means one worker per CPU.
	HashWorkers int `env:"HASH_WORKERS" envDefault:"0"`

	// Empty writes logs to stdout.
	LogDir string `env:"LOG_DIR" envDefault:"logs"`
}

// TokenTTL returns JWTExpiresIn as a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresIn) * time.Second
}

// LoadConfig reads .env (when present) and then the process environment.
// A missing JWT_SECRET is an error: the service must not start without it.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		// Quiet under GO_ENV=test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment only")
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTExpiresIn <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN must be positive, got %d", cfg.JWTExpiresIn)
	}
	return cfg, nil
}
