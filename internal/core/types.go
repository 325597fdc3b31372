package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TuskName = "TuskMem"
	Version  = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var (
	ErrUnknownBotType = errors.New("unknown bot type")
	ErrEmptyUserID    = errors.New("empty telegram user id")
	ErrEmptyTenantID  = errors.New("tenant id is required to create a memory record")
	ErrEmptyFact      = errors.New("empty user fact")
	ErrRecordCorrupt  = errors.New("memory record is corrupt")
)

// BotType distinguishes bot personas that share one storage.
type BotType string

const (
	BotAdmin  BotType = "admin"
	BotClient BotType = "client"
)

func ParseBotType(s string) (BotType, error) {
	switch bt := BotType(strings.ToLower(strings.TrimSpace(s))); bt {
	case BotAdmin, BotClient:
		return bt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBotType, s)
	}
}

type Message struct {
	Role      string    `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// ConversationSummary replaces a window of compacted messages.
type ConversationSummary struct {
	Summary      string    `json:"summary" bson:"summary"`
	MessageCount int       `json:"messageCount" bson:"messageCount"`
	StartedAt    time.Time `json:"startedAt" bson:"startedAt"`
	EndedAt      time.Time `json:"endedAt" bson:"endedAt"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

type UserFact struct {
	ID        string    `json:"id" bson:"id"`
	Fact      string    `json:"fact" bson:"fact"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty"`
	Source    string    `json:"source,omitempty" bson:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// MemoryRecord is the whole memory of one end user for one bot. The bson
// names mirror the json ones; mongo keeps times at millisecond precision.
type MemoryRecord struct {
	BotType        BotType               `json:"botType" bson:"botType"`
	TelegramUserID string                `json:"telegramUserId" bson:"telegramUserId"`
	TenantID       string                `json:"tenantId" bson:"tenantId"`
	Messages       []Message             `json:"messages" bson:"messages"`
	Summaries      []ConversationSummary `json:"summaries" bson:"summaries"`
	UserFacts      []UserFact            `json:"userFacts" bson:"userFacts"`
	CreatedAt      time.Time             `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt" bson:"updatedAt"`
}

func (r *MemoryRecord) Key() RecordKey {
	return RecordKey{BotType: r.BotType, UserID: r.TelegramUserID}
}

// Clone returns a deep copy so cached records can't be mutated by callers.
func (r *MemoryRecord) Clone() *MemoryRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Messages = append([]Message(nil), r.Messages...)
	c.Summaries = append([]ConversationSummary(nil), r.Summaries...)
	c.UserFacts = append([]UserFact(nil), r.UserFacts...)
	return &c
}

// RecordKey identifies a record across every tier.
type RecordKey struct {
	BotType BotType
	UserID  string
}

func NewRecordKey(bot BotType, userID string) (RecordKey, error) {
	bt, err := ParseBotType(string(bot))
	if err != nil {
		return RecordKey{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return RecordKey{}, ErrEmptyUserID
	}
	return RecordKey{BotType: bt, UserID: userID}, nil
}

// StoreKey is the document id in the persistent store.
func (k RecordKey) StoreKey() string {
	return string(k.BotType) + "_" + k.UserID
}

// CacheKey is the key in the distributed cache namespace.
func (k RecordKey) CacheKey() string {
	return "memory:user:" + string(k.BotType) + ":" + k.UserID
}

func (k RecordKey) String() string {
	return k.StoreKey()
}
