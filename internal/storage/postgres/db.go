package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sandevgo/tuskmem/pkg/migrate"
	"github.com/sandevgo/tuskmem/pkg/retry"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// NewPool connects to dsn, waiting for the server with the default backoff,
// and applies migrations.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	err = retry.NewDefaultRetrier().Named("postgres ping").Do(ctx, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	// idle connections stay owned by the pool
	db := stdlib.OpenDBFromPool(pool)

	if err := migrate.Up(ctx, db, embedMigrations, "postgres", "migrations"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return pool, nil
}
