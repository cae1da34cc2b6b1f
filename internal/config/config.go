package config

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config is read from LEARNHUB_* environment variables, optionally seeded
// from a .env file in the working directory.
type Config struct {
	Port          int    `env:"LEARNHUB_PORT" envDefault:"5000"`
	DataDir       string `env:"LEARNHUB_DATA_DIR" envDefault:"./data"`
	Storage       string `env:"LEARNHUB_STORAGE" envDefault:"json"`
	SQLitePath    string `env:"LEARNHUB_SQLITE_PATH" envDefault:"./data/learnhub.db"`
	ProgressFeed  bool   `env:"LEARNHUB_PROGRESS_FEED" envDefault:"true"`
	TCPAddr       string `env:"LEARNHUB_TCP_ADDR" envDefault:":9090"`
	HashPasswords bool   `env:"LEARNHUB_HASH_PASSWORDS" envDefault:"false"`
	SeedBlogs     string `env:"LEARNHUB_SEED_BLOGS"`
	LogLevel      string `env:"LEARNHUB_LOG_LEVEL" envDefault:"info"`
	Env           string `env:"LEARNHUB_ENV" envDefault:"development"`
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c Config) ServerAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	switch cfg.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return nil, fmt.Errorf("LEARNHUB_STORAGE must be %q or %q, got %q", StorageJSON, StorageSQLite, cfg.Storage)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("LEARNHUB_PORT out of range: %d", cfg.Port)
	}
	return cfg, nil
}
