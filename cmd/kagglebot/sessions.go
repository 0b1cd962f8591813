package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sandevgo/kagglebot/internal/config"
	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/ui"
	"github.com/sandevgo/kagglebot/internal/storage/sqlite"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions [id]",
	Short: "List archived sessions, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stderr)
		defer flushLog()

		dbPath := config.AppConfig{RuntimePath: config.GetRuntimePath()}.GetDatabasePath()
		db, err := sqlite.NewDB(ctx, dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		archive := sqlite.NewArchiveRepo(db)
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			snap, err := archive.LoadSession(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		list, err := archive.ListSessions(ctx, sessionsLimit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No archived sessions.")
			return nil
		}
		fmt.Fprintln(out, renderSessions(list))
		return nil
	},
}

func renderSessions(list []core.SessionSummary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.DescStyle).
		Headers("ID", "CHANNEL", "ENDED", "DURATION", "MESSAGES", "ERRORS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.UsageStyle.Bold(true)
			}
			return lipgloss.NewStyle()
		})

	for _, s := range list {
		t.Row(
			s.ID,
			s.Channel,
			s.EndedAt.Local().Format(time.DateTime),
			s.EndedAt.Sub(s.StartedAt).Round(time.Second).String(),
			strconv.Itoa(s.MessageCount),
			strconv.Itoa(s.ErrorCount),
		)
	}
	return t.Render()
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "number of sessions to list")
	rootCmd.AddCommand(sessionsCmd)
}
