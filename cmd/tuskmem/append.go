package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/internal/service/ui"
)

var (
	appendTenant      string
	appendRole        string
	appendAutoCompact bool
)

var appendCmd = &cobra.Command{
	Use:   "append <admin|client> <user-id> <content...>",
	Short: "Append a message to a user's conversation",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		bot, user, err := parseKey(args)
		if err != nil {
			return err
		}
		switch appendRole {
		case core.RoleUser, core.RoleAssistant, core.RoleSystem:
		default:
			return fmt.Errorf("unknown role %q", appendRole)
		}

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close(ctx)

		msg := core.Message{Role: appendRole, Content: strings.Join(args[2:], " ")}
		due, err := app.Memory.AppendMessage(ctx, bot, user, appendTenant, msg)
		if err != nil {
			return err
		}
		if !due {
			fmt.Fprintln(cmd.OutOrStdout(), "appended")
			return nil
		}

		if !appendAutoCompact {
			fmt.Fprintln(cmd.OutOrStdout(), "appended, "+ui.WarnStyle.Render("compaction due"))
			return nil
		}

		applied, err := app.Memory.Compact(ctx, bot, user, memory.TruncatingSummarizer{})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "appended, compacted=%t\n", applied)
		return nil
	},
}

func init() {
	appendCmd.Flags().StringVarP(&appendTenant, "tenant", "t", "", "tenant id, required when the record is new")
	appendCmd.Flags().StringVarP(&appendRole, "role", "r", core.RoleUser, "message role: user, assistant or system")
	appendCmd.Flags().BoolVar(&appendAutoCompact, "auto-compact", false, "compact with the truncating summarizer when due")
	rootCmd.AddCommand(appendCmd)
}
