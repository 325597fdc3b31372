package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/tuskmem/internal/core"
)

// Runs against a real server only: TUSKMEM_TEST_POSTGRES_DSN=postgres://...
func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	dsn := os.Getenv("TUSKMEM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TUSKMEM_TEST_POSTGRES_DSN not set")
	}

	pool, err := NewPool(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewRecordStore(pool)
}

func uniqueKey(t *testing.T) core.RecordKey {
	key, err := core.NewRecordKey(core.BotClient, fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano()))
	require.NoError(t, err)
	return key
}

func TestRecordStore_ConcurrentCreate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := uniqueKey(t)

	const writers = 8
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		content := fmt.Sprintf("m%d", i)
		g.Go(func() error {
			_, err := store.RunTransaction(ctx, key, func(current *core.MemoryRecord) (*core.MemoryRecord, error) {
				msg := core.Message{Role: core.RoleUser, Content: content, Timestamp: time.Now().UTC()}
				if current == nil {
					now := time.Now().UTC()
					return &core.MemoryRecord{
						BotType:        key.BotType,
						TelegramUserID: key.UserID,
						TenantID:       "t1",
						Messages:       []core.Message{msg},
						CreatedAt:      now,
						UpdatedAt:      now,
					}, nil
				}
				current.Messages = append(current.Messages, msg)
				return current, nil
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	rec, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, rec.Messages, writers)
}

func TestRecordStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Get(context.Background(), uniqueKey(t))
	require.NoError(t, err)
	assert.False(t, ok)
}
