package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/ui"
	"github.com/sandevgo/tuskmem/pkg/log"
)

var (
	debug   bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:     "tuskmem",
	Version: core.Version,
	Short:   "TuskMem - tiered conversation memory",
	Long:    `TuskMem keeps per-user chat memory for Telegram bots across a process cache, Redis and a persistent store.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "write logs as JSON lines")
}

// setupLogger logs to stderr so command output on stdout stays clean.
func setupLogger(ctx context.Context) (context.Context, func()) {
	return log.NewContextWithOptions(ctx, log.Options{
		Debug: debug || config.IsDebug(),
		JSON:  jsonLog,
		Out:   os.Stderr,
	})
}

// parseKey reads the <bot> <user> positional arguments.
func parseKey(args []string) (core.BotType, string, error) {
	bot, err := core.ParseBotType(args[0])
	if err != nil {
		return "", "", err
	}
	key, err := core.NewRecordKey(bot, args[1])
	if err != nil {
		return "", "", err
	}
	return key.BotType, key.UserID, nil
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return ui.TitleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return ui.UsageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return ui.FlagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return ui.DescStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{StyleFlag (.LocalFlags.FlagUsages | trimTrailingWhitespaces)}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
