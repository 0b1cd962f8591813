package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandevgo/kagglebot/internal/config"
	"github.com/sandevgo/kagglebot/internal/service/installer"
	"github.com/sandevgo/kagglebot/pkg/log"
)

var setupCmd = &cobra.Command{
	Use:           "setup",
	Short:         "Configure the reasoning backend and Kaggle credentials",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stdout)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		// run wizard (includes save step)
		if _, err := installer.RunWizard(runtimePath); err != nil {
			return err
		}

		// Validate what was written the same way the other commands will read it
		envPath := config.AppConfig{RuntimePath: runtimePath}.GetEnvPath()
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		} else if _, err := config.ParseAppConfig(); err != nil {
			logger.Warn().Err(err).Msg("configuration is incomplete")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! You can now run 'kagglebot chat'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
