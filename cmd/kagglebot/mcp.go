package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/kagglebot/internal/config"
	"github.com/sandevgo/kagglebot/internal/transport/mcp"
	"github.com/sandevgo/kagglebot/pkg/srv"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the Kaggle tools over MCP (stdio)",
	Long:  `Exposes the research tools to MCP clients. No reasoning backend is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// stdout carries the protocol
		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stderr)
		defer flushLog()

		ts := newToolset(ctx, config.GetRuntimePath())

		server, err := mcp.NewServer(ts.registry, mcp.WithOnExit(stop))
		if err != nil {
			ts.db.Close()
			return err
		}

		services := []srv.Service{server, srv.NewCleanup(ts.db.Close)}
		srv.Run(ctx, stop, services...)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
