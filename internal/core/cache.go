package core

import (
	"context"
	"time"
)

// Result is a cache lookup outcome. Adapter failures surface as a miss.
type Result[V any] struct {
	Value V
	Hit   bool
}

func Hit[V any](v V) Result[V] {
	return Result[V]{Value: v, Hit: true}
}

func Miss[V any]() Result[V] {
	return Result[V]{}
}

// RecordCache is one non-authoritative tier. Implementations carry no
// business logic and never return errors to the caller.
type RecordCache interface {
	Get(ctx context.Context, key RecordKey) Result[*MemoryRecord]
	Set(ctx context.Context, key RecordKey, rec *MemoryRecord, ttl time.Duration)
	Del(ctx context.Context, key RecordKey)
}

// NopCache is used when a tier is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, RecordKey) Result[*MemoryRecord] {
	return Miss[*MemoryRecord]()
}

func (NopCache) Set(context.Context, RecordKey, *MemoryRecord, time.Duration) {}

func (NopCache) Del(context.Context, RecordKey) {}
