package memory

import (
	"context"
	"strings"

	"github.com/sandevgo/tuskmem/internal/core"
)

const DefaultSummaryLineRunes = 200

// TruncatingSummarizer is a deterministic stand-in for an LLM summarizer:
// one "role: content" line per message, each clipped to MaxLineRunes.
type TruncatingSummarizer struct {
	MaxLineRunes int
}

func (t TruncatingSummarizer) Summarize(_ context.Context, messages []core.Message) (core.ConversationSummary, error) {
	limit := t.MaxLineRunes
	if limit <= 0 {
		limit = DefaultSummaryLineRunes
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		content := strings.Join(strings.Fields(m.Content), " ")
		if content == "" {
			continue
		}
		lines = append(lines, m.Role+": "+clip(content, limit))
	}

	summary := core.ConversationSummary{
		Summary:      strings.Join(lines, "\n"),
		MessageCount: len(messages),
	}
	if len(messages) > 0 {
		summary.StartedAt = messages[0].Timestamp
		summary.EndedAt = messages[len(messages)-1].Timestamp
	}
	return summary, nil
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
