package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskmem/internal/core"
)

func TestTruncatingSummarizer(t *testing.T) {
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	messages := []core.Message{
		{Role: core.RoleUser, Content: "  where   is\nmy order?  ", Timestamp: start},
		{Role: core.RoleAssistant, Content: "   ", Timestamp: start.Add(time.Second)},
		{Role: core.RoleAssistant, Content: strings.Repeat("ж", 12), Timestamp: start.Add(2 * time.Second)},
	}

	summary, err := TruncatingSummarizer{MaxLineRunes: 10}.Summarize(context.Background(), messages)
	require.NoError(t, err)

	assert.Equal(t, "user: where is m…\nassistant: "+strings.Repeat("ж", 10)+"…", summary.Summary)
	assert.Equal(t, 3, summary.MessageCount)
	assert.Equal(t, start, summary.StartedAt)
	assert.Equal(t, start.Add(2*time.Second), summary.EndedAt)
}

func TestTruncatingSummarizer_Empty(t *testing.T) {
	summary, err := TruncatingSummarizer{}.Summarize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Summary)
	assert.Zero(t, summary.MessageCount)
	assert.True(t, summary.StartedAt.IsZero())
}
