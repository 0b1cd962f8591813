package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/kagglebot/internal/core"
)

type simple struct {
	name        string
	description string
	run         func(ctx context.Context, s Session, args []string) (string, error)
}

func (c simple) Name() string        { return c.name }
func (c simple) Description() string { return c.description }
func (c simple) Execute(ctx context.Context, s Session, args []string) (string, error) {
	return c.run(ctx, s, args)
}

func NewStatsCommand() Command {
	return simple{"stats", "Show session counters, memory and log statistics",
		func(_ context.Context, s Session, _ []string) (string, error) {
			return indentJSON(s.Stats())
		}}
}

func NewHistoryCommand() Command {
	return simple{"history", "Show the retained conversation",
		func(_ context.Context, s Session, _ []string) (string, error) {
			history := s.History()
			if history == nil {
				history = []core.Message{}
			}
			return indentJSON(history)
		}}
}

// NewLogsCommand prints the operation log; "!logs N" prints the last N entries.
func NewLogsCommand() Command {
	return simple{"logs", "Show the operation log (optionally only the last N entries)",
		func(_ context.Context, s Session, args []string) (string, error) {
			logs := s.Logs()
			if logs == nil {
				logs = []core.LogEntry{}
			}
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return "", fmt.Errorf("invalid entry count %q", args[0])
				}
				if n < len(logs) {
					logs = logs[len(logs)-n:]
				}
			}
			return indentJSON(logs)
		}}
}

func NewResetCommand() Command {
	return simple{"reset", "Archive this conversation and start a fresh session",
		func(ctx context.Context, s Session, _ []string) (string, error) {
			if err := s.Reset(ctx); err != nil {
				return "Agent session has been reset. Archiving the previous session failed: " + err.Error(), nil
			}
			return "Agent session has been reset.", nil
		}}
}

func NewToolsCommand() Command {
	return simple{"tools", "List the operations available to the assistant",
		func(_ context.Context, s Session, _ []string) (string, error) {
			type row struct {
				Name        string   `json:"name"`
				Description string   `json:"description"`
				Required    []string `json:"required,omitempty"`
			}
			decls := s.Tools()
			rows := make([]row, 0, len(decls))
			for _, d := range decls {
				rows = append(rows, row{Name: d.Name, Description: d.Description, Required: d.Required()})
			}
			return indentJSON(rows)
		}}
}

func NewHelpCommand(r *Router) Command {
	return simple{"help", "List commands",
		func(_ context.Context, _ Session, _ []string) (string, error) {
			out := "Commands:\n"
			for _, cmd := range r.ListCommands() {
				out += fmt.Sprintf("  %s%-8s %s\n", Prefix, cmd.Name(), cmd.Description())
			}
			return out + "  exit      Quit", nil
		}}
}
