package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
)

// NeedsCompaction reports whether count messages exceed the threshold.
func NeedsCompaction(count int, limits core.Limits) bool {
	return count > limits.CompactionThreshold
}

// OldestBatch returns the messages the next compaction will remove.
func OldestBatch(rec *core.MemoryRecord, limits core.Limits) []core.Message {
	n := min(limits.CompactionBatch, len(rec.Messages))
	return append([]core.Message(nil), rec.Messages[:n]...)
}

// appendBounded appends add and keeps only the newest limit items.
// A non-positive limit means unbounded.
func appendBounded[T any](items []T, limit int, add ...T) []T {
	items = append(items, add...)
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return append([]T(nil), items[len(items)-limit:]...)
}

// coversHead reports whether summary describes the batch compaction would
// remove now. A summary without a time range is taken at its word.
func coversHead(rec *core.MemoryRecord, summary core.ConversationSummary, limits core.Limits) bool {
	if summary.StartedAt.IsZero() && summary.EndedAt.IsZero() {
		return true
	}
	batch := OldestBatch(rec, limits)
	if len(batch) == 0 {
		return false
	}
	return batch[0].Timestamp.Equal(summary.StartedAt) && batch[len(batch)-1].Timestamp.Equal(summary.EndedAt)
}

// compactRecord drops the oldest batch from the head of the message list and
// appends summary. Remaining messages keep their order.
func compactRecord(rec *core.MemoryRecord, summary core.ConversationSummary, limits core.Limits, now time.Time) {
	n := min(limits.CompactionBatch, len(rec.Messages))
	rec.Messages = append([]core.Message(nil), rec.Messages[n:]...)
	rec.Summaries = appendBounded(rec.Summaries, limits.MaxSummaries, summary)
	rec.UpdatedAt = now
}

// Compact summarizes the oldest batch with summarizer and compacts the record
// when it is over the threshold. It reports whether a compaction was applied.
func (s *Service) Compact(ctx context.Context, bot core.BotType, userID string, summarizer core.Summarizer) (bool, error) {
	rec, ok, err := s.GetUserMemory(ctx, bot, userID)
	if err != nil || !ok {
		return false, err
	}
	if !NeedsCompaction(len(rec.Messages), s.limits) {
		return false, nil
	}

	batch := OldestBatch(rec, s.limits)
	summary, err := summarizer.Summarize(ctx, batch)
	if err != nil {
		return false, fmt.Errorf("failed to summarize %d messages: %w", len(batch), err)
	}
	if summary.MessageCount == 0 {
		summary.MessageCount = len(batch)
	}
	if summary.StartedAt.IsZero() && len(batch) > 0 {
		summary.StartedAt = batch[0].Timestamp
		summary.EndedAt = batch[len(batch)-1].Timestamp
	}

	return s.compact(ctx, bot, userID, summary)
}
