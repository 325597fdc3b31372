package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/service/installer"
	"github.com/sandevgo/tuskmem/pkg/log"
)

var installOverwrite bool

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Configure TuskMem interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		state := installer.NewInstallState(config.GetRuntimePath())
		state.Overwrite = installOverwrite

		// run wizard (includes save step)
		state, err := installer.RunWizard(state)
		if err != nil {
			return err
		}

		if err := godotenv.Load(state.EnvPath()); err != nil {
			logger.Warn().Err(err).Str("path", state.EnvPath()).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", state.RuntimePath)
		logger.Info().Msg("Installation complete! You can now run 'tuskmem start'.")
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&installOverwrite, "overwrite", false, "replace an existing .env file")
	rootCmd.AddCommand(installCmd)
}
