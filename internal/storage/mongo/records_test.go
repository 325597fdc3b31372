package mongo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sandevgo/tuskmem/internal/core"
)

func TestDocument_FieldNamesMatchUpdatePaths(t *testing.T) {
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(document{
		ID: "admin_u1",
		Record: core.MemoryRecord{
			BotType:        core.BotAdmin,
			TelegramUserID: "u1",
			UserFacts:      []core.UserFact{{ID: "f1", Fact: "likes tea", CreatedAt: ts}},
			UpdatedAt:      ts,
		},
	})
	require.NoError(t, err)

	for _, path := range []string{"record.messages", "record.summaries", "record.userFacts", "record.updatedAt"} {
		_, err := bson.Raw(raw).LookupErr(strings.Split(path, ".")...)
		assert.NoError(t, err, path)
	}
	_, err = bson.Raw(raw).LookupErr("record", "userfacts")
	assert.Error(t, err)
}

// Needs a replica set: TUSKMEM_TEST_MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0
func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	uri := os.Getenv("TUSKMEM_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TUSKMEM_TEST_MONGO_URI not set")
	}

	store, err := NewRecordStore(context.Background(), uri, "tuskmem_test", "memory_records")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordStore_CreateUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key, err := core.NewRecordKey(core.BotAdmin, fmt.Sprintf("u-%d", time.Now().UnixNano()))
	require.NoError(t, err)

	_, err = store.RunTransaction(ctx, key, func(current *core.MemoryRecord) (*core.MemoryRecord, error) {
		require.Nil(t, current)
		now := time.Now().UTC()
		return &core.MemoryRecord{
			BotType:        key.BotType,
			TelegramUserID: key.UserID,
			TenantID:       "t1",
			Messages:       []core.Message{{Role: core.RoleUser, Content: "hi", Timestamp: now}},
			CreatedAt:      now,
			UpdatedAt:      now,
		}, nil
	})
	require.NoError(t, err)

	_, err = store.RunTransaction(ctx, key, func(current *core.MemoryRecord) (*core.MemoryRecord, error) {
		require.NotNil(t, current)
		current.TenantID = "other"
		current.Messages = append(current.Messages, core.Message{Role: core.RoleAssistant, Content: "hello"})
		return current, nil
	})
	require.NoError(t, err)

	rec, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t1", rec.TenantID)
	assert.Len(t, rec.Messages, 2)
}
