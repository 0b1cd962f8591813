package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addArgs struct {
	A int `json:"a" jsonschema:"first addend"`
	B int `json:"b" jsonschema:"second addend"`
}

func addNumbers() Tool {
	return MustFunc("add-numbers", "Adds two integers.", func(ctx context.Context, in addArgs) (string, error) {
		return strconv.Itoa(in.A + in.B), nil
	})
}

func TestRegistry_Invoke(t *testing.T) {
	panicky := Tool{
		Declaration: core.ToolDeclaration{Name: "explode"},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			panic("kaboom")
		},
	}
	failing := Tool{
		Declaration: core.ToolDeclaration{Name: "offline"},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			return "", errors.New("connection refused")
		},
	}

	reg, err := FromTools(addNumbers(), panicky, failing)
	require.NoError(t, err)

	tests := []struct {
		name        string
		tool        string
		args        string
		wantKind    core.ErrorKind
		wantText    string
		wantObserve string
	}{
		{
			name:     "valid call",
			tool:     "add-numbers",
			args:     `{"a": 1, "b": 2}`,
			wantText: "3",
		},
		{
			name:        "missing required argument",
			tool:        "add-numbers",
			args:        `{"a": 1}`,
			wantKind:    core.KindToolExecution,
			wantObserve: "Error executing add-numbers",
		},
		{
			name:     "malformed json is repaired",
			tool:     "add-numbers",
			args:     `{"a": 4, "b": 5`,
			wantText: "9",
		},
		{
			name:        "unknown tool",
			tool:        "drop-tables",
			args:        `{}`,
			wantKind:    core.KindUnknownTool,
			wantObserve: "Unknown function: drop-tables",
		},
		{
			name:        "handler panic is contained",
			tool:        "explode",
			args:        ``,
			wantKind:    core.KindToolExecution,
			wantObserve: "Error executing explode: panic: kaboom",
		},
		{
			name:        "handler error",
			tool:        "offline",
			args:        `null`,
			wantKind:    core.KindToolExecution,
			wantObserve: "Error executing offline: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res core.Result
			require.NotPanics(t, func() {
				res = reg.Invoke(context.Background(), tt.tool, json.RawMessage(tt.args))
			})

			assert.Equal(t, tt.wantKind, res.Kind())
			if tt.wantKind == "" {
				assert.True(t, res.OK())
				assert.Equal(t, tt.wantText, res.Text)
				assert.Equal(t, tt.wantText, res.Observation())
				return
			}
			assert.False(t, res.OK())
			assert.Contains(t, res.Observation(), tt.wantObserve)
		})
	}
}

func TestRegistry_MissingArgumentIsInvalidArguments(t *testing.T) {
	reg, err := FromTools(addNumbers())
	require.NoError(t, err)

	res := reg.Invoke(context.Background(), "add-numbers", json.RawMessage(`{"a": 1}`))
	require.NotNil(t, res.Failure)
	assert.ErrorIs(t, res.Failure, core.ErrInvalidArguments)
}

func TestRegistry_Construction(t *testing.T) {
	noop := func(ctx context.Context, args json.RawMessage) (string, error) { return "", nil }

	tests := []struct {
		name     string
		decls    []core.ToolDeclaration
		handlers map[string]Handler
		wantErr  string
	}{
		{
			name:     "declared name without handler",
			decls:    []core.ToolDeclaration{{Name: "a"}, {Name: "b"}},
			handlers: map[string]Handler{"a": noop},
			wantErr:  `"b" has no bound handler`,
		},
		{
			name:     "duplicate declaration",
			decls:    []core.ToolDeclaration{{Name: "a"}, {Name: "a"}},
			handlers: map[string]Handler{"a": noop},
			wantErr:  `duplicate declaration "a"`,
		},
		{
			name:     "empty name",
			decls:    []core.ToolDeclaration{{Name: ""}},
			handlers: map[string]Handler{"": noop},
			wantErr:  "empty name",
		},
		{
			name:     "extra handlers are allowed",
			decls:    []core.ToolDeclaration{{Name: "a"}},
			handlers: map[string]Handler{"a": noop, "b": noop},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.decls, tt.handlers)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, reg)
				return
			}
			require.NoError(t, err)
			assert.Len(t, reg.Declare(), len(tt.decls))
		})
	}
}

func TestRegistry_DeclareAndResolve(t *testing.T) {
	reg, err := FromTools(addNumbers())
	require.NoError(t, err)

	decls := reg.Declare()
	require.Len(t, decls, 1)
	assert.Equal(t, "add-numbers", decls[0].Name)
	assert.ElementsMatch(t, []string{"a", "b"}, decls[0].Required())
	assert.Contains(t, string(decls[0].SchemaJSON()), `"first addend"`)

	_, err = reg.Resolve("add-numbers")
	assert.NoError(t, err)

	_, err = reg.Resolve("missing")
	assert.ErrorIs(t, err, core.ErrUnknownTool)
}
