package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
)

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type RecordStore struct {
	db *sql.DB
}

var _ core.RecordStore = (*RecordStore)(nil)

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Get(ctx context.Context, key core.RecordKey) (*core.MemoryRecord, bool, error) {
	rec, err := getRecord(ctx, s.db, key)
	if err != nil {
		return nil, false, err
	}
	return rec, rec != nil, nil
}

func (s *RecordStore) RunTransaction(ctx context.Context, key core.RecordKey, fn core.TxFunc) (*core.MemoryRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getRecord(ctx, tx, key)
	if err != nil {
		return nil, err
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	if next == nil {
		return nil, tx.Commit()
	}
	if next.Key() != key {
		return nil, fmt.Errorf("transaction for %s returned record %s", key, next.Key())
	}

	if current == nil {
		err = insertRecord(ctx, tx, next)
	} else {
		err = updateRecord(ctx, tx, next)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("key", key.StoreKey()).
		Int("messages", len(next.Messages)).
		Msg("memory record committed")

	return next, nil
}

func getRecord(ctx context.Context, q queryRower, key core.RecordKey) (*core.MemoryRecord, error) {
	query := `SELECT bot_type, telegram_user_id, tenant_id, messages, summaries, user_facts, created_at, updated_at
		FROM memory_records WHERE id = ?`

	var (
		rec                        core.MemoryRecord
		messages, summaries, facts string
		createdAt, updatedAt       time.Time
	)
	err := q.QueryRowContext(ctx, query, key.StoreKey()).Scan(
		&rec.BotType, &rec.TelegramUserID, &rec.TenantID,
		&messages, &summaries, &facts,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query memory record: %w", err)
	}

	if err := json.Unmarshal([]byte(messages), &rec.Messages); err != nil {
		return nil, fmt.Errorf("%w: messages: %v", core.ErrRecordCorrupt, err)
	}
	if err := json.Unmarshal([]byte(summaries), &rec.Summaries); err != nil {
		return nil, fmt.Errorf("%w: summaries: %v", core.ErrRecordCorrupt, err)
	}
	if err := json.Unmarshal([]byte(facts), &rec.UserFacts); err != nil {
		return nil, fmt.Errorf("%w: user facts: %v", core.ErrRecordCorrupt, err)
	}
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updatedAt.UTC()

	return &rec, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec *core.MemoryRecord) error {
	messages, summaries, facts, err := marshalCollections(rec)
	if err != nil {
		return err
	}

	query := `INSERT INTO memory_records
		(id, bot_type, telegram_user_id, tenant_id, messages, summaries, user_facts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		rec.Key().StoreKey(), string(rec.BotType), rec.TelegramUserID, rec.TenantID,
		messages, summaries, facts,
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory record: %w", err)
	}
	return nil
}

// updateRecord never touches tenant_id or created_at: both are fixed at creation.
func updateRecord(ctx context.Context, tx *sql.Tx, rec *core.MemoryRecord) error {
	messages, summaries, facts, err := marshalCollections(rec)
	if err != nil {
		return err
	}

	query := `UPDATE memory_records SET messages = ?, summaries = ?, user_facts = ?, updated_at = ? WHERE id = ?`
	_, err = tx.ExecContext(ctx, query, messages, summaries, facts, rec.UpdatedAt.UTC(), rec.Key().StoreKey())
	if err != nil {
		return fmt.Errorf("failed to update memory record: %w", err)
	}
	return nil
}

func marshalCollections(rec *core.MemoryRecord) (string, string, string, error) {
	messages, err := marshalList(rec.Messages)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal messages: %w", err)
	}
	summaries, err := marshalList(rec.Summaries)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal summaries: %w", err)
	}
	facts, err := marshalList(rec.UserFacts)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal user facts: %w", err)
	}
	return messages, summaries, facts, nil
}

// marshalList stores nil slices as "[]" so reads never see null.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
