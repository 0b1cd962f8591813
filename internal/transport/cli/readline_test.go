package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/providers/tools"
	"github.com/sandevgo/kagglebot/internal/service/agent"
	"github.com/sandevgo/kagglebot/internal/service/command"
)

type twoStepAI struct {
	calls int
}

func (a *twoStepAI) Chat(_ context.Context, _ []core.Message, _ []core.ToolDeclaration) (core.Message, error) {
	a.calls++
	if a.calls%2 == 1 {
		return core.Message{ToolCalls: []core.ToolCall{{
			ID:       "call_1",
			Function: core.FunctionCall{Name: "lookup", Arguments: `{"slug":"titanic"}`},
		}}}, nil
	}
	return core.Message{Content: "Titanic has 15000 teams."}, nil
}

type lookupArgs struct {
	Slug string `json:"slug"`
}

func newREPL(t *testing.T) *ReadLine {
	t.Helper()
	reg, err := tools.FromTools(tools.MustFunc("lookup", "Look up a competition", func(_ context.Context, a lookupArgs) (string, error) {
		return "15000 teams", nil
	}))
	require.NoError(t, err)
	s := agent.NewSession(context.Background(), agent.NewLoop(&twoStepAI{}, reg))
	return &ReadLine{session: s, router: command.NewDefault()}
}

func TestReadLine_Handle(t *testing.T) {
	ctx := context.Background()
	r := newREPL(t)

	tests := []struct {
		name     string
		line     string
		wantQuit bool
		want     []string
	}{
		{name: "blank", line: "   "},
		{name: "query", line: "how big is titanic?", want: []string{`> lookup {"slug":"titanic"}`, "Titanic has 15000 teams."}},
		{name: "command", line: "!stats", want: []string{`"queries_processed": 1`, `"tools_called": 1`}},
		{name: "exit", line: "EXIT", wantQuit: true, want: []string{"Goodbye!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			quit := r.handle(ctx, &out, tt.line)
			assert.Equal(t, tt.wantQuit, quit)
			if len(tt.want) == 0 {
				assert.Empty(t, out.String())
			}
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}
