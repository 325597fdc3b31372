package memory

import (
	"strings"

	"github.com/sandevgo/tuskmem/internal/core"
)

// FormatContext renders a record as the memory block the response engine
// puts in front of its prompt. Empty sections are omitted.
func FormatContext(rec *core.MemoryRecord) string {
	if rec == nil {
		return ""
	}

	var sb strings.Builder

	if len(rec.UserFacts) > 0 {
		sb.WriteString("### Known facts about the user\n")
		for _, f := range rec.UserFacts {
			sb.WriteString("- ")
			sb.WriteString(f.Fact)
			sb.WriteString("\n")
		}
	}

	if len(rec.Summaries) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("### Earlier conversation\n")
		for _, s := range rec.Summaries {
			sb.WriteString("- ")
			sb.WriteString(strings.ReplaceAll(s.Summary, "\n", "\n  "))
			sb.WriteString("\n")
		}
	}

	if len(rec.Messages) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("### Recent messages\n")
		for _, m := range rec.Messages {
			sb.WriteString(strings.ToUpper(m.Role))
			sb.WriteString(": ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
