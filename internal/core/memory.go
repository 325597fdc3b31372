package core

import "context"

// Summarizer condenses the oldest messages of a record. Implementations are
// usually LLM backed and live outside this module.
type Summarizer interface {
	Summarize(ctx context.Context, messages []Message) (ConversationSummary, error)
}

// Memory is what the response pipeline consumes.
type Memory interface {
	GetUserMemory(ctx context.Context, bot BotType, userID string) (*MemoryRecord, bool, error)
	AppendMessage(ctx context.Context, bot BotType, userID, tenantID string, msg Message) (bool, error)
	CompactMessages(ctx context.Context, bot BotType, userID string, summary ConversationSummary) error
	AddUserFact(ctx context.Context, bot BotType, userID string, fact UserFact) error
}
