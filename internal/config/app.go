package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/tuskmem/internal/core"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMissingDSN    = errors.New("store connection string is not set")
	ErrBadLimits     = errors.New("memory limits must be positive")
	ErrBadTTL        = errors.New("cache durations must be positive")
)

type AppConfig struct {
	RuntimePath string `env:"TUSKMEM_RUNTIME_PATH" envDefault:".tuskmem"`

	// Persistent store
	StoreDriver     string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath      string `env:"SQLITE_PATH"`
	PostgresDSN     string `env:"POSTGRES_DSN"`
	MongoURI        string `env:"MONGO_URI"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"tuskmem"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"memory_records"`

	// Distributed cache, disabled when the address is empty
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Cache lifetimes
	ProcessCacheTTL     time.Duration `env:"PROCESS_CACHE_TTL" envDefault:"5m"`
	DistributedCacheTTL time.Duration `env:"DISTRIBUTED_CACHE_TTL" envDefault:"5m"`
	ProcessCacheSweep   time.Duration `env:"PROCESS_CACHE_SWEEP" envDefault:"1m"`

	// Compaction policy
	CompactionThreshold int `env:"COMPACTION_THRESHOLD" envDefault:"20"`
	CompactionBatch     int `env:"COMPACTION_BATCH" envDefault:"10"`
	MaxSummaries        int `env:"MAX_SUMMARIES" envDefault:"10"`
	MaxUserFacts        int `env:"MAX_USER_FACTS" envDefault:"20"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:"127.0.0.1:9464"`
}

// ParseAppConfig reads the config from environ, or from the process
// environment when environ is nil, and validates it.
func ParseAppConfig(environ map[string]string) (*AppConfig, error) {
	c := &AppConfig{}
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c AppConfig) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: POSTGRES_DSN", ErrMissingDSN)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%w: MONGO_URI", ErrMissingDSN)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StoreDriver)
	}

	ttls := map[string]time.Duration{
		"PROCESS_CACHE_TTL":     c.ProcessCacheTTL,
		"DISTRIBUTED_CACHE_TTL": c.DistributedCacheTTL,
		"PROCESS_CACHE_SWEEP":   c.ProcessCacheSweep,
	}
	for name, d := range ttls {
		if d <= 0 {
			return fmt.Errorf("%w: %s=%s", ErrBadTTL, name, d)
		}
	}

	l := c.Limits()
	if l.CompactionThreshold <= 0 || l.CompactionBatch <= 0 || l.MaxSummaries <= 0 || l.MaxUserFacts <= 0 {
		return fmt.Errorf("%w: %+v", ErrBadLimits, l)
	}
	return nil
}

func (c AppConfig) Limits() core.Limits {
	return core.Limits{
		CompactionThreshold: c.CompactionThreshold,
		CompactionBatch:     c.CompactionBatch,
		MaxSummaries:        c.MaxSummaries,
		MaxUserFacts:        c.MaxUserFacts,
	}
}

func (c AppConfig) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

// GetDatabasePath returns SQLITE_PATH, or memory.db inside the runtime path.
func (c AppConfig) GetDatabasePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.RuntimePath, "memory.db")
}

// GetEnvPath is the .env file inside the runtime path.
func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
