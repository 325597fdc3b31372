package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/internal/service/ui"
)

var showAsContext bool

var showCmd = &cobra.Command{
	Use:   "show <admin|client> <user-id>",
	Short: "Print a user's memory record",
	Args:  cobra.ExactArgs(2),
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

		rec, ok, err := app.Memory.GetUserMemory(ctx, bot, user)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), ui.DescStyle.Render("no memory for "+string(bot)+"/"+user))
			return nil
		}

		if showAsContext {
			fmt.Fprint(cmd.OutOrStdout(), memory.FormatContext(rec))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderRecord(rec, app.Memory.Limits()))
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showAsContext, "context", false, "print the prompt context block instead")
	rootCmd.AddCommand(showCmd)
}
