package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskmem/internal/core"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

var testKey = core.RecordKey{BotType: core.BotClient, UserID: "u9"}

func testRecord() *core.MemoryRecord {
	ts := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	return &core.MemoryRecord{
		BotType:        core.BotClient,
		TelegramUserID: "u9",
		TenantID:       "tenant",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "first", Timestamp: ts},
			{Role: core.RoleAssistant, Content: "second", Timestamp: ts.Add(time.Second)},
		},
		Summaries: []core.ConversationSummary{{Summary: "earlier", MessageCount: 10}},
		UserFacts: []core.UserFact{{ID: "f", Fact: "has a cat", CreatedAt: ts}},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	c.Set(ctx, testKey, testRecord(), 5*time.Minute)

	require.True(t, mr.Exists("memory:user:client:u9"))
	assert.Equal(t, 5*time.Minute, mr.TTL("memory:user:client:u9"))

	res := c.Get(ctx, testKey)
	require.True(t, res.Hit)
	assert.Equal(t, testRecord(), res.Value)
}

func TestCache_PayloadIsJSONText(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	c.Set(ctx, testKey, testRecord(), time.Minute)

	raw, err := mr.Get(testKey.CacheKey())
	require.NoError(t, err)
	assert.Contains(t, raw, `"telegramUserId":"u9"`)
	assert.Contains(t, raw, `"userFacts"`)
}

func TestCache_Misses(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(c *Cache, mr *miniredis.Miniredis)
	}{
		{
			name:  "absent",
			setup: func(c *Cache, mr *miniredis.Miniredis) {},
		},
		{
			name: "expired",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				c.Set(ctx, testKey, testRecord(), time.Minute)
				mr.FastForward(time.Minute)
			},
		},
		{
			name: "deleted",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				c.Set(ctx, testKey, testRecord(), time.Minute)
				c.Del(ctx, testKey)
			},
		},
		{
			name: "malformed_payload",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				require.NoError(t, mr.Set(testKey.CacheKey(), "{not json"))
			},
		},
		{
			name: "null_payload",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				require.NoError(t, mr.Set(testKey.CacheKey(), "null"))
			},
		},
		{
			name: "empty_object",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				require.NoError(t, mr.Set(testKey.CacheKey(), "{}"))
			},
		},
		{
			name: "other_users_record",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				require.NoError(t, mr.Set(testKey.CacheKey(), `{"botType":"admin","telegramUserId":"someone-else"}`))
			},
		},
		{
			name: "zero_ttl_not_stored",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				c.Set(ctx, testKey, testRecord(), 0)
				assert.False(t, mr.Exists(testKey.CacheKey()))
			},
		},
		{
			name: "server_down",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				c.Set(ctx, testKey, testRecord(), time.Minute)
				mr.Close()
			},
		},
		{
			name: "server_error",
			setup: func(c *Cache, mr *miniredis.Miniredis) {
				c.Set(ctx, testKey, testRecord(), time.Minute)
				mr.SetError("LOADING dataset in memory")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mr := newTestCache(t)
			tt.setup(c, mr)

			res := c.Get(ctx, testKey)
			assert.False(t, res.Hit)
			assert.Nil(t, res.Value)
		})
	}
}

func TestCache_WritesNeverPanicWhenDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	c.Set(ctx, testKey, testRecord(), time.Minute)
	c.Del(ctx, testKey)
	c.Set(ctx, testKey, nil, time.Minute)
}
