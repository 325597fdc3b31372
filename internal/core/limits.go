package core

import "time"

const (
	CompactionThreshold = 20
	CompactionBatch     = 10
	MaxSummaries        = 10
	MaxUserFacts        = 20

	DefaultProcessCacheTTL     = 5 * time.Minute
	DefaultDistributedCacheTTL = 5 * time.Minute
)

// Limits bounds the growth of a MemoryRecord.
type Limits struct {
	CompactionThreshold int
	CompactionBatch     int
	MaxSummaries        int
	MaxUserFacts        int
}

func DefaultLimits() Limits {
	return Limits{
		CompactionThreshold: CompactionThreshold,
		CompactionBatch:     CompactionBatch,
		MaxSummaries:        MaxSummaries,
		MaxUserFacts:        MaxUserFacts,
	}
}
