package core

import "context"

// TxFunc is the unit of work run inside a store transaction. It receives the
// record as read inside the transaction (nil when absent) and returns the
// record to write, or nil to leave the store untouched. The store performs
// exactly one read and at most one write per call.
type TxFunc func(current *MemoryRecord) (*MemoryRecord, error)

// RecordStore is the authoritative tier.
type RecordStore interface {
	// Get returns ok=false when no record exists for key.
	Get(ctx context.Context, key RecordKey) (rec *MemoryRecord, ok bool, err error)
	// RunTransaction applies fn atomically and returns the committed record,
	// or nil when fn chose not to write.
	RunTransaction(ctx context.Context, key RecordKey, fn TxFunc) (*MemoryRecord, error)
}
