package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/pkg/retry"
)

// Cache is the shared tier. Records travel as JSON text; every failure,
// including a payload that no longer decodes, is reported as a miss.
type Cache struct {
	client goredis.Cmdable
}

var _ core.RecordCache = (*Cache)(nil)

func New(client goredis.Cmdable) *Cache {
	return &Cache{client: client}
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient dials addr and waits for it with the default backoff.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:       opts.Addr,
		Password:   opts.Password,
		DB:         opts.DB,
		ClientName: core.TuskName,
	})

	err := retry.NewDefaultRetrier().Named("redis ping").Do(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

func (c *Cache) Get(ctx context.Context, key core.RecordKey) core.Result[*core.MemoryRecord] {
	payload, err := c.client.Get(ctx, key.CacheKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return core.Miss[*core.MemoryRecord]()
	}
	if err != nil {
		warn(ctx, "get", key, err)
		return core.Miss[*core.MemoryRecord]()
	}

	var rec core.MemoryRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		warn(ctx, "decode", key, err)
		return core.Miss[*core.MemoryRecord]()
	}
	if rec.Key() != key {
		warn(ctx, "decode", key, fmt.Errorf("%w: payload belongs to %q", core.ErrRecordCorrupt, rec.Key()))
		return core.Miss[*core.MemoryRecord]()
	}
	return core.Hit(&rec)
}

// Set is skipped for a non-positive ttl: redis would keep such a key forever.
func (c *Cache) Set(ctx context.Context, key core.RecordKey, rec *core.MemoryRecord, ttl time.Duration) {
	if rec == nil || ttl <= 0 {
		return
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		warn(ctx, "encode", key, err)
		return
	}

	if err := c.client.Set(ctx, key.CacheKey(), string(payload), ttl).Err(); err != nil {
		warn(ctx, "set", key, err)
	}
}

func (c *Cache) Del(ctx context.Context, key core.RecordKey) {
	if err := c.client.Del(ctx, key.CacheKey()).Err(); err != nil {
		warn(ctx, "del", key, err)
	}
}

func warn(ctx context.Context, op string, key core.RecordKey, err error) {
	log.FromCtx(ctx).Warn().
		Err(err).
		Str("op", op).
		Str("key", key.CacheKey()).
		Msg("distributed cache failure ignored")
}
