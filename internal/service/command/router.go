package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/agent"
)

// Prefix marks a chat line as a command.
const Prefix = "!"

// Session is the part of *agent.Session commands act on.
type Session interface {
	ID() string
	Stats() agent.Stats
	History() []core.Message
	Logs() []core.LogEntry
	Tools() []core.ToolDeclaration
	Reset(ctx context.Context) error
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, s Session, args []string) (string, error)
}

type Router struct {
	commands map[string]Command
}

func New(commands []Command) *Router {
	c := &Router{
		commands: make(map[string]Command),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	return c
}

// Execute runs input as a command against s. The second result is false when
// input is not a command and should be treated as a query.
func (c *Router) Execute(ctx context.Context, s Session, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, Prefix) {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(parts[0], Prefix))
	args := parts[1:]

	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: %s%s. Available: %s", Prefix, name, c.names()), true
	}

	result, err := cmd.Execute(ctx, s, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return result, true
}

// ListCommands returns the commands sorted by name.
func (c *Router) ListCommands() []Command {
	res := make([]Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

func (c *Router) names() string {
	cmds := c.ListCommands()
	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, Prefix+cmd.Name())
	}
	return strings.Join(names, ", ")
}
