package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/agent"
	"github.com/sandevgo/kagglebot/internal/service/command"
	"github.com/sandevgo/kagglebot/internal/service/ui"
	"github.com/sandevgo/kagglebot/internal/transport/cli"
	"github.com/sandevgo/kagglebot/pkg/log"
	"github.com/sandevgo/kagglebot/pkg/srv"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer one query and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stderr)
		defer flushLog()

		a := newApp(ctx)
		defer a.db.Close()

		session := a.newSession(ctx, "cli")
		defer func() {
			if err := session.Close(context.WithoutCancel(ctx)); err != nil {
				log.FromCtx(ctx).Warn().Err(err).Msg("failed to archive session")
			}
		}()

		out := cmd.OutOrStdout()
		res := session.Ask(ctx, strings.Join(args, " "), func(msg core.Message) {
			for _, tc := range msg.ToolCalls {
				fmt.Fprintln(out, ui.ToolStyle.Render(fmt.Sprintf("  > %s %s", tc.Function.Name, tc.Function.Arguments)))
			}
		})
		fmt.Fprintln(out, agent.Present(res))
		return nil
	},
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// stdout belongs to the REPL
	var flushLog func()
	ctx, flushLog = setupLogger(ctx, os.Stderr)
	defer flushLog()

	a := newApp(ctx)

	repl, err := cli.NewReadLine(a.newSession(ctx, "cli"), command.NewDefault(), a.cfg.GetRuntimePath(), stop)
	if err != nil {
		a.db.Close()
		return err
	}

	// the REPL archives its session on shutdown, so the database closes last
	services := []srv.Service{repl, srv.NewCleanup(a.db.Close)}

	srv.Run(ctx, stop, services...)
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
}
