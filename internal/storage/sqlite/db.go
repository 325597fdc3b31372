package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandevgo/tuskmem/pkg/migrate"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// dsnOptions: every transaction starts with BEGIN IMMEDIATE, so writers to
// the same record serialize on the database lock instead of failing on upgrade.
const dsnOptions = "?_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=0"

func NewDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate.Up(ctx, db, embedMigrations, "sqlite3", "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
