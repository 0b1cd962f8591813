package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/providers/tools"
	"github.com/sandevgo/kagglebot/internal/service/agent"
)

type echoAI struct{}

func (echoAI) Chat(_ context.Context, _ []core.Message, _ []core.ToolDeclaration) (core.Message, error) {
	return core.Message{Role: core.RoleAssistant, Content: "Here are 3 matches..."}, nil
}

type ping struct {
	Target string `json:"target" jsonschema:"Host to ping"`
}

func newSession(t *testing.T) *agent.Session {
	t.Helper()
	reg, err := tools.FromTools(tools.MustFunc("ping", "Ping a host", func(_ context.Context, p ping) (string, error) {
		return "pong " + p.Target, nil
	}))
	require.NoError(t, err)
	return agent.NewSession(context.Background(), agent.NewLoop(echoAI{}, reg))
}

func TestRouter_NotACommand(t *testing.T) {
	r := NewDefault()
	out, handled := r.Execute(context.Background(), newSession(t), "find competitions about loan default")
	assert.False(t, handled)
	assert.Empty(t, out)
}

func TestRouter_Unknown(t *testing.T) {
	r := NewDefault()
	out, handled := r.Execute(context.Background(), newSession(t), "!nope")
	assert.True(t, handled)
	assert.Equal(t, "Unknown command: !nope. Available: !help, !history, !logs, !reset, !stats, !tools", out)
}

func TestRouter_SessionCommands(t *testing.T) {
	ctx := context.Background()
	r := NewDefault()
	s := newSession(t)
	s.Run(ctx, "find competitions about loan default")

	out, handled := r.Execute(ctx, s, "!stats")
	require.True(t, handled)
	var stats map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 1, stats["agent_stats"]["queries_processed"])
	assert.EqualValues(t, 2, stats["memory_stats"]["total_messages"])
	assert.EqualValues(t, 0, stats["logger_stats"]["error_count"])
	assert.Contains(t, out, "\n  \"agent_stats\": {")

	out, _ = r.Execute(ctx, s, "!history")
	var history []core.Message
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, "Here are 3 matches...", history[1].Content)

	out, _ = r.Execute(ctx, s, "!logs")
	var logs []core.LogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &logs))
	require.NotEmpty(t, logs)
	assert.Equal(t, "query received", logs[0].Event)

	out, _ = r.Execute(ctx, s, "!logs 1")
	require.NoError(t, json.Unmarshal([]byte(out), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "query completed", logs[0].Event)

	out, _ = r.Execute(ctx, s, "!logs x")
	assert.Equal(t, `Error: invalid entry count "x"`, out)

	out, _ = r.Execute(ctx, s, "!tools")
	assert.Contains(t, out, `"name": "ping"`)
	assert.Contains(t, out, `"required": [`)

	prev := s.ID()
	out, _ = r.Execute(ctx, s, "!RESET")
	assert.Equal(t, "Agent session has been reset.", out)
	assert.NotEqual(t, prev, s.ID())

	out, _ = r.Execute(ctx, s, "!history")
	assert.Equal(t, "[]", out)
	out, _ = r.Execute(ctx, s, "!logs")
	assert.Equal(t, "[]", out)
}

type failingArchive struct{}

func (failingArchive) SaveSession(context.Context, core.SessionSnapshot) error {
	return errors.New("disk full")
}

func (failingArchive) ListSessions(context.Context, int) ([]core.SessionSummary, error) {
	return nil, nil
}

func TestRouter_ResetArchiveFailure(t *testing.T) {
	ctx := context.Background()
	reg, err := tools.FromTools()
	require.NoError(t, err)
	s := agent.NewSession(ctx, agent.NewLoop(echoAI{}, reg), agent.WithArchive(failingArchive{}))
	s.Run(ctx, "hello")

	out, _ := NewDefault().Execute(ctx, s, "!reset")
	assert.Contains(t, out, "Agent session has been reset.")
	assert.Contains(t, out, "disk full")
	assert.Empty(t, s.History())
}

func TestRouter_Help(t *testing.T) {
	out, handled := NewDefault().Execute(context.Background(), newSession(t), "!help")
	assert.True(t, handled)
	assert.Contains(t, out, "!stats")
	assert.Contains(t, out, "exit")
}
