package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/kagglebot/internal/config"
	"github.com/sandevgo/kagglebot/internal/service/agent"
	"github.com/sandevgo/kagglebot/internal/service/command"
	"github.com/sandevgo/kagglebot/internal/transport/telegram"
	"github.com/sandevgo/kagglebot/pkg/log"
	"github.com/sandevgo/kagglebot/pkg/srv"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat transports (Telegram)",
	Long:  `Starts every transport enabled in the configuration. Each Telegram chat gets its own session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stdout)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting kagglebot")

		a := newApp(ctx)

		transports, err := initTransports(ctx, a)
		if err != nil {
			a.db.Close()
			return err
		}
		services := append(transports, srv.NewCleanup(a.db.Close))

		srv.Run(ctx, stop, services...)
		logger.Info().Msg("kagglebot has been shut down gracefully")
		return nil
	},
}

func initTransports(ctx context.Context, a *app) ([]srv.Service, error) {
	var services []srv.Service

	if a.cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		pool := agent.NewPool(func(chat string) *agent.Session {
			return a.newSession(ctx, "telegram:"+chat)
		})
		bot, err := telegram.NewBot(ctx, tgCfg, pool, command.NewDefault())
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if len(services) == 0 {
		return nil, errors.New("no transports enabled; set ENABLE_TELEGRAM=true or use 'kagglebot chat'")
	}
	return services, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
