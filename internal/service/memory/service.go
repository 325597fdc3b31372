package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
)

// Service serves and mutates MemoryRecords across three tiers: the process
// cache, the distributed cache and the authoritative RecordStore. Reads fill
// the faster tiers; writes go through a store transaction and then delete the
// key from both caches so the next read repopulates from the store.
type Service struct {
	store     core.RecordStore
	local     core.RecordCache
	shared    core.RecordCache
	localTTL  time.Duration
	sharedTTL time.Duration
	limits    core.Limits
	now       func() time.Time
	metrics   *Metrics
}

var _ core.Memory = (*Service)(nil)

type Option func(*Service)

func WithProcessCache(c core.RecordCache) Option {
	return func(s *Service) {
		if c != nil {
			s.local = c
		}
	}
}

func WithDistributedCache(c core.RecordCache) Option {
	return func(s *Service) {
		if c != nil {
			s.shared = c
		}
	}
}

// WithTTLs sets the per-tier TTLs. They are independent knobs.
func WithTTLs(process, distributed time.Duration) Option {
	return func(s *Service) {
		s.localTTL = process
		s.sharedTTL = distributed
	}
}

func WithLimits(l core.Limits) Option {
	return func(s *Service) {
		s.limits = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store core.RecordStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		local:     core.NopCache{},
		shared:    core.NopCache{},
		localTTL:  core.DefaultProcessCacheTTL,
		sharedTTL: core.DefaultDistributedCacheTTL,
		limits:    core.DefaultLimits(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Limits() core.Limits {
	return s.limits
}

// GetUserMemory returns ok=false when the pair has no record yet.
func (s *Service) GetUserMemory(ctx context.Context, bot core.BotType, userID string) (*core.MemoryRecord, bool, error) {
	key, err := core.NewRecordKey(bot, userID)
	if err != nil {
		return nil, false, err
	}
	logger := log.FromCtx(ctx).With().Str("key", key.StoreKey()).Logger()

	if res := s.local.Get(ctx, key); res.Hit {
		s.metrics.lookup(tierProcess, true)
		logger.Debug().Str("tier", tierProcess).Msg("memory cache hit")
		return res.Value, true, nil
	}
	s.metrics.lookup(tierProcess, false)

	if res := s.shared.Get(ctx, key); res.Hit {
		s.metrics.lookup(tierDistributed, true)
		logger.Debug().Str("tier", tierDistributed).Msg("memory cache hit")
		s.local.Set(ctx, key, res.Value, s.localTTL)
		return res.Value, true, nil
	}
	s.metrics.lookup(tierDistributed, false)

	rec, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load memory for %s: %w", key, err)
	}
	s.metrics.lookup(tierStore, ok)
	if !ok {
		logger.Debug().Msg("memory record not found")
		return nil, false, nil
	}

	s.local.Set(ctx, key, rec, s.localTTL)
	s.shared.Set(ctx, key, rec, s.sharedTTL)
	return rec, true, nil
}

// AppendMessage stores msg at the end of the record, creating the record on
// first use, and reports whether the record is now due for compaction.
func (s *Service) AppendMessage(ctx context.Context, bot core.BotType, userID, tenantID string, msg core.Message) (bool, error) {
	key, err := core.NewRecordKey(bot, userID)
	if err != nil {
		return false, err
	}

	now := s.now().UTC()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}

	rec, err := s.store.RunTransaction(ctx, key, func(current *core.MemoryRecord) (*core.MemoryRecord, error) {
		if current == nil {
			if strings.TrimSpace(tenantID) == "" {
				return nil, core.ErrEmptyTenantID
			}
			return &core.MemoryRecord{
				BotType:        key.BotType,
				TelegramUserID: key.UserID,
				TenantID:       tenantID,
				Messages:       []core.Message{msg},
				Summaries:      []core.ConversationSummary{},
				UserFacts:      []core.UserFact{},
				CreatedAt:      now,
				UpdatedAt:      now,
			}, nil
		}

		current.Messages = append(current.Messages, msg)
		current.UpdatedAt = now
		return current, nil
	})
	if err != nil {
		s.metrics.mutation(opAppend, statusError)
		return false, fmt.Errorf("failed to append message for %s: %w", key, err)
	}
	s.metrics.mutation(opAppend, statusOK)

	s.invalidate(ctx, key)

	needsCompaction := NeedsCompaction(len(rec.Messages), s.limits)
	if needsCompaction {
		s.metrics.compactionDue()
		log.FromCtx(ctx).Info().
			Str("key", key.StoreKey()).
			Int("messages", len(rec.Messages)).
			Int("threshold", s.limits.CompactionThreshold).
			Msg("memory record due for compaction")
	}

	return needsCompaction, nil
}

// CompactMessages drops the oldest batch of messages, whatever their count,
// and appends summary. It is a logged no-op when the record is missing. When
// summary carries the StartedAt/EndedAt of the batch it describes, it is also
// a no-op unless that batch is still the head of the record, so a repeated
// call never trims messages the summary does not cover.
func (s *Service) CompactMessages(ctx context.Context, bot core.BotType, userID string, summary core.ConversationSummary) error {
	_, err := s.compact(ctx, bot, userID, summary)
	return err
}

func (s *Service) compact(ctx context.Context, bot core.BotType, userID string, summary core.ConversationSummary) (bool, error) {
	key, err := core.NewRecordKey(bot, userID)
	if err != nil {
		return false, err
	}

	now := s.now().UTC()
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = now
	}

	var outcome string
	_, err = s.store.RunTransaction(ctx, key, func(current *core.MemoryRecord) (*core.MemoryRecord, error) {
		switch {
		case current == nil:
			outcome = "missing"
			return nil, nil
		case !coversHead(current, summary, s.limits):
			outcome = "stale_summary"
			return nil, nil
		}

		outcome = ""
		compactRecord(current, summary, s.limits, now)
		return current, nil
	})
	if err != nil {
		s.metrics.mutation(opCompact, statusError)
		return false, fmt.Errorf("failed to compact messages for %s: %w", key, err)
	}

	if outcome != "" {
		s.metrics.mutation(opCompact, statusNoop)
		log.FromCtx(ctx).Info().
			Str("key", key.StoreKey()).
			Str("reason", outcome).
			Msg("compaction skipped")
		return false, nil
	}
	s.metrics.mutation(opCompact, statusOK)

	s.invalidate(ctx, key)
	return true, nil
}

// AddUserFact appends fact, evicting the oldest facts past the cap. It is a
// logged no-op when the record does not exist.
func (s *Service) AddUserFact(ctx context.Context, bot core.BotType, userID string, fact core.UserFact) error {
	key, err := core.NewRecordKey(bot, userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(fact.Fact) == "" {
		return core.ErrEmptyFact
	}

	now := s.now().UTC()
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = now
	}

	var missing bool
	_, err = s.store.RunTransaction(ctx, key, func(current *core.MemoryRecord) (*core.MemoryRecord, error) {
		missing = current == nil
		if missing {
			return nil, nil
		}
		current.UserFacts = appendBounded(current.UserFacts, s.limits.MaxUserFacts, fact)
		current.UpdatedAt = now
		return current, nil
	})
	if err != nil {
		s.metrics.mutation(opAddFact, statusError)
		return fmt.Errorf("failed to add user fact for %s: %w", key, err)
	}

	if missing {
		s.metrics.mutation(opAddFact, statusNoop)
		log.FromCtx(ctx).Info().Str("key", key.StoreKey()).Msg("user fact dropped: no memory record")
		return nil
	}
	s.metrics.mutation(opAddFact, statusOK)

	s.invalidate(ctx, key)
	return nil
}

// invalidate deletes rather than refreshes: a concurrent writer may already
// have committed a newer version than the one this call holds.
func (s *Service) invalidate(ctx context.Context, key core.RecordKey) {
	s.local.Del(ctx, key)
	s.shared.Del(ctx, key)
}
