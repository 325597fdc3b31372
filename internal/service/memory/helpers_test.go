package memory

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/storage/memcache"
	"github.com/sandevgo/tuskmem/internal/storage/redis"
	"github.com/sandevgo/tuskmem/internal/storage/sqlite"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory RecordStore that serializes transactions on one mutex.
type memStore struct {
	mu      sync.Mutex
	records map[core.RecordKey]*core.MemoryRecord
	gets    atomic.Int32
	fail    atomic.Bool
}

func newMemStore() *memStore {
	return &memStore{records: make(map[core.RecordKey]*core.MemoryRecord)}
}

func (m *memStore) Get(_ context.Context, key core.RecordKey) (*core.MemoryRecord, bool, error) {
	m.gets.Add(1)
	if m.fail.Load() {
		return nil, false, errStoreDown
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	return rec.Clone(), ok, nil
}

func (m *memStore) RunTransaction(_ context.Context, key core.RecordKey, fn core.TxFunc) (*core.MemoryRecord, error) {
	if m.fail.Load() {
		return nil, errStoreDown
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(m.records[key].Clone())
	if err != nil || next == nil {
		return nil, err
	}
	m.records[key] = next.Clone()
	return next, nil
}

func (m *memStore) exists(key core.RecordKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[key]
	return ok
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type tiers struct {
	local  *memcache.Cache
	shared *redis.Cache
	redis  *miniredis.Miniredis
	clock  *clock
}

func newTiers(t *testing.T) *tiers {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	c := newClock()
	return &tiers{
		local:  memcache.New(memcache.WithClock(c.Now)),
		shared: redis.New(client),
		redis:  mr,
		clock:  c,
	}
}

func (tr *tiers) service(store core.RecordStore, opts ...Option) *Service {
	base := []Option{
		WithProcessCache(tr.local),
		WithDistributedCache(tr.shared),
		WithClock(tr.clock.Now),
	}
	return NewService(store, append(base, opts...)...)
}

func newSQLiteStore(t *testing.T) *sqlite.RecordStore {
	t.Helper()
	db, err := sqlite.NewDB(context.Background(), filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewRecordStore(db)
}

func userMsg(content string) core.Message {
	return core.Message{Role: core.RoleUser, Content: content}
}

func mustKey(t *testing.T, bot core.BotType, user string) core.RecordKey {
	t.Helper()
	key, err := core.NewRecordKey(bot, user)
	require.NoError(t, err)
	return key
}
