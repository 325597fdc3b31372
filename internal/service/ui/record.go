package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
)

const timeLayout = "2006-01-02 15:04:05"

// RenderRecord formats a memory record for the terminal.
func RenderRecord(rec *core.MemoryRecord, limits core.Limits) string {
	var sb strings.Builder

	sb.WriteString(SectionStyle.Render(fmt.Sprintf("%s / %s", rec.BotType, rec.TelegramUserID)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s\n", DescStyle.Render("tenant:"), rec.TenantID)
	fmt.Fprintf(&sb, "%s %s\n", DescStyle.Render("created:"), rec.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(&sb, "%s %s\n\n", DescStyle.Render("updated:"), rec.UpdatedAt.Local().Format(timeLayout))

	fmt.Fprintf(&sb, "%s\n", SectionStyle.Render(fmt.Sprintf("Facts (%d/%d)", len(rec.UserFacts), limits.MaxUserFacts)))
	for _, f := range rec.UserFacts {
		line := "  - " + f.Fact
		if f.Category != "" {
			line += " " + DescStyle.Render("["+f.Category+"]")
		}
		sb.WriteString(line + "\n")
	}

	fmt.Fprintf(&sb, "\n%s\n", SectionStyle.Render(fmt.Sprintf("Summaries (%d/%d)", len(rec.Summaries), limits.MaxSummaries)))
	for _, s := range rec.Summaries {
		fmt.Fprintf(&sb, "  %s\n", DescStyle.Render(span(s.StartedAt, s.EndedAt, s.MessageCount)))
		for _, line := range strings.Split(s.Summary, "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}

	header := fmt.Sprintf("Messages (%d)", len(rec.Messages))
	sb.WriteString("\n" + SectionStyle.Render(header))
	if len(rec.Messages) > limits.CompactionThreshold {
		sb.WriteString(" " + WarnStyle.Render("compaction due"))
	}
	sb.WriteString("\n")
	for _, m := range rec.Messages {
		fmt.Fprintf(&sb, "  %s %s: %s\n", DescStyle.Render(m.Timestamp.Local().Format(timeLayout)), Role(m.Role), m.Content)
	}

	return sb.String()
}

func span(from, to time.Time, count int) string {
	if from.IsZero() {
		return fmt.Sprintf("%d messages", count)
	}
	return fmt.Sprintf("%d messages, %s .. %s", count, from.Local().Format(timeLayout), to.Local().Format(timeLayout))
}
