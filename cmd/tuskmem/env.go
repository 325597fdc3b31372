package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/pkg/env"
	"github.com/sandevgo/tuskmem/pkg/log"
)

var envWrite bool

var secretKeys = []string{"POSTGRES_DSN", "MONGO_URI", "REDIS_PASSWORD"}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration as .env",
	Long:  `Prints the configuration in .env form with secrets blanked. With --write it saves the full configuration to the runtime .env file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		cfg, err := config.ParseAppConfig(nil)
		if err != nil {
			return err
		}

		if envWrite {
			cfg.RuntimePath = config.GetRuntimePath()
			path := cfg.GetEnvPath()

			// the runtime path is found through the environment, not the file
			saved := *cfg
			saved.RuntimePath = ""
			content, err := env.MarshalEnv(&saved)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				return err
			}
			log.FromCtx(ctx).Info().Str("path", path).Msg("config saved")
			return nil
		}

		content, err := env.MarshalEnv(cfg, env.Redact(secretKeys...))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	},
}

func init() {
	envCmd.Flags().BoolVarP(&envWrite, "write", "w", false, "save to the runtime .env file")
	rootCmd.AddCommand(envCmd)
}
