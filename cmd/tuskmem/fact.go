package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/tuskmem/internal/core"
)

var (
	factCategory string
	factSource   string
)

var factCmd = &cobra.Command{
	Use:   "fact <admin|client> <user-id> <fact...>",
	Short: "Remember a fact about a user",
	Args:  cobra.MinimumNArgs(3),
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

		fact := core.UserFact{
			Fact:     strings.Join(args[2:], " "),
			Category: factCategory,
			Source:   factSource,
		}
		if err := app.Memory.AddUserFact(ctx, bot, user, fact); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	factCmd.Flags().StringVar(&factCategory, "category", "", "fact category")
	factCmd.Flags().StringVar(&factSource, "source", "cli", "where the fact came from")
	rootCmd.AddCommand(factCmd)
}
