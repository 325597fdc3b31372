package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
)

var compactSummary string

var compactCmd = &cobra.Command{
	Use:   "compact <admin|client> <user-id>",
	Short: "Fold the oldest messages into a summary",
	Long: `Replaces the oldest batch of messages with a summary when the record is over the
compaction threshold. Without --summary the batch is summarized by truncation.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		bot, user, err := parseKey(args)
		if err != nil {
			return err
		}

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close(ctx)

		if compactSummary != "" {
			summary := core.ConversationSummary{
				Summary:      compactSummary,
				MessageCount: app.Memory.Limits().CompactionBatch,
			}
			return app.Memory.CompactMessages(ctx, bot, user, summary)
		}

		applied, err := app.Memory.Compact(ctx, bot, user, memory.TruncatingSummarizer{})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "compacted=%t\n", applied)
		return nil
	},
}

func init() {
	compactCmd.Flags().StringVarP(&compactSummary, "summary", "s", "", "summary text to store")
	rootCmd.AddCommand(compactCmd)
}
