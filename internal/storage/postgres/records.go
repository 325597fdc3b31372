package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sandevgo/tuskmem/internal/core"
)

// RecordStore keeps each MemoryRecord as one JSONB document.
type RecordStore struct {
	pool *pgxpool.Pool
}

var _ core.RecordStore = (*RecordStore)(nil)

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

func (s *RecordStore) Get(ctx context.Context, key core.RecordKey) (*core.MemoryRecord, bool, error) {
	rec, err := getRecord(ctx, s.pool, key, false)
	if err != nil {
		return nil, false, err
	}
	return rec, rec != nil, nil
}

func (s *RecordStore) RunTransaction(ctx context.Context, key core.RecordKey, fn core.TxFunc) (*core.MemoryRecord, error) {
	var committed *core.MemoryRecord

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Row locks can't cover a record that does not exist yet, so creation
		// races are serialized on a transaction-scoped advisory lock instead.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.StoreKey()); err != nil {
			return fmt.Errorf("failed to lock memory record: %w", err)
		}

		current, err := getRecord(ctx, tx, key, true)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if next.Key() != key {
			return fmt.Errorf("transaction for %s returned record %s", key, next.Key())
		}

		doc, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal memory record: %w", err)
		}

		if current == nil {
			_, err = tx.Exec(ctx,
				`INSERT INTO memory_records (id, tenant_id, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
				key.StoreKey(), next.TenantID, doc, next.CreatedAt, next.UpdatedAt,
			)
		} else {
			// tenant_id and created_at are fixed at creation
			next.TenantID = current.TenantID
			next.CreatedAt = current.CreatedAt
			if doc, err = json.Marshal(next); err != nil {
				return fmt.Errorf("failed to marshal memory record: %w", err)
			}
			_, err = tx.Exec(ctx,
				`UPDATE memory_records SET doc = $2, updated_at = $3 WHERE id = $1`,
				key.StoreKey(), doc, next.UpdatedAt,
			)
		}
		if err != nil {
			return fmt.Errorf("failed to write memory record: %w", err)
		}

		committed = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return committed, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getRecord(ctx context.Context, q rowQuerier, key core.RecordKey, forUpdate bool) (*core.MemoryRecord, error) {
	query := `SELECT doc FROM memory_records WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var doc []byte
	err := q.QueryRow(ctx, query, key.StoreKey()).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query memory record: %w", err)
	}

	var rec core.MemoryRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRecordCorrupt, err)
	}
	return &rec, nil
}
