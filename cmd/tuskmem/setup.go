package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/internal/storage/memcache"
	"github.com/sandevgo/tuskmem/internal/storage/mongo"
	"github.com/sandevgo/tuskmem/internal/storage/postgres"
	"github.com/sandevgo/tuskmem/internal/storage/redis"
	"github.com/sandevgo/tuskmem/internal/storage/sqlite"
	"github.com/sandevgo/tuskmem/internal/transport/httpserver"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/pkg/srv"
)

// App is everything a command needs: the memory service plus the services
// that keep it running and the cleanups that release its clients.
type App struct {
	Config   *config.AppConfig
	Memory   *memory.Service
	Local    *memcache.Cache
	Registry *prometheus.Registry
	Checks   map[string]httpserver.HealthCheck

	cleanups []srv.Service
}

func NewApp(ctx context.Context) (*App, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	// 1. Configuration
	cfg, err := config.ParseAppConfig(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.RuntimePath = config.GetRuntimePath()

	app := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		Checks:   make(map[string]httpserver.HealthCheck),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 2. Persistent store
	store, err := app.initStore(ctx)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	// 3. Caches
	app.Local = memcache.New()
	opts := []memory.Option{
		memory.WithProcessCache(app.Local),
		memory.WithTTLs(cfg.ProcessCacheTTL, cfg.DistributedCacheTTL),
		memory.WithLimits(cfg.Limits()),
		memory.WithMetrics(memory.NewMetrics(app.Registry)),
	}

	if cfg.RedisEnabled() {
		client, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.cleanups = append(app.cleanups, srv.NewCleanup(client.Close))
		app.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		opts = append(opts, memory.WithDistributedCache(redis.New(client)))
	} else {
		log.FromCtx(ctx).Info().Msg("REDIS_ADDR not set, distributed cache disabled")
	}

	// 4. Memory service
	app.Memory = memory.NewService(store, opts...)
	return app, nil
}

func (a *App) initStore(ctx context.Context) (core.RecordStore, error) {
	logger := log.FromCtx(ctx)
	cfg := a.Config

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.cleanups = append(a.cleanups, srv.NewCleanup(func() error {
			pool.Close()
			return nil
		}))
		a.Checks["store"] = pool.Ping
		logger.Info().Str("driver", cfg.StoreDriver).Msg("persistent store ready")
		return postgres.NewRecordStore(pool), nil

	case config.DriverMongo:
		store, err := mongo.NewRecordStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		a.cleanups = append(a.cleanups, srv.NewCleanup(store.Close))
		a.Checks["store"] = store.Ping
		logger.Info().Str("driver", cfg.StoreDriver).Str("database", cfg.MongoDatabase).Msg("persistent store ready")
		return store, nil

	default:
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, err
		}
		a.cleanups = append(a.cleanups, srv.NewCleanup(db.Close))
		a.Checks["store"] = db.PingContext
		logger.Info().Str("driver", cfg.StoreDriver).Str("path", cfg.GetDatabasePath()).Msg("persistent store ready")
		return sqlite.NewRecordStore(db), nil
	}
}

// Services returns the long-running services for `start`. Cleanups come
// first so that they run last on shutdown.
func (a *App) Services() []srv.Service {
	services := append([]srv.Service(nil), a.cleanups...)
	services = append(services,
		memcache.NewJanitor(a.Local, a.Config.ProcessCacheSweep),
		httpserver.NewServer(a.Config.MetricsAddr, a.Registry, a.Checks),
	)
	return services
}

// Close releases clients for one-shot commands.
func (a *App) Close(ctx context.Context) {
	logger := log.FromCtx(ctx)
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i].Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to release client")
		}
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
