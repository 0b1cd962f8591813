package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/oplog"
)

const DefaultResultLimit = 4000

// Counters are the running totals of one session.
type Counters struct {
	QueriesProcessed int `json:"queries_processed"`
	ToolsCalled      int `json:"tools_called"`
	Errors           int `json:"errors"`
}

type Executor struct {
	tools core.ToolInvoker
	limit int
}

func NewExecutor(tools core.ToolInvoker, limit int) *Executor {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	return &Executor{
		tools: tools,
		limit: limit,
	}
}

// Execute invokes every call in order and returns one tool message per call.
// Each attempt is journaled and counted; failures become observations.
func (e *Executor) Execute(ctx context.Context, calls []core.ToolCall, journal *oplog.Log, counters *Counters) []core.Message {
	results := make([]core.Message, 0, len(calls))
	for _, tc := range calls {
		name := tc.Function.Name
		journal.Info(oplog.EventToolStarted, core.Fields{
			"tool": name,
			"args": tc.Function.Arguments,
		})
		counters.ToolsCalled++

		res := e.tools.Invoke(ctx, name, json.RawMessage(tc.Function.Arguments))
		if res.OK() {
			journal.Info(oplog.EventToolSucceeded, core.Fields{
				"tool":  name,
				"bytes": len(res.Text),
			})
		} else {
			counters.Errors++
			journal.Error(oplog.EventToolFailed, core.Fields{
				"tool":  name,
				"kind":  string(res.Kind()),
				"error": res.Failure.Err.Error(),
			})
		}

		results = append(results, core.Message{
			Role:       core.RoleTool,
			Name:       name,
			Content:    observationPrompt(name, e.truncate(res.Observation())),
			ToolCallID: tc.ID,
		})
	}
	return results
}

func (e *Executor) truncate(input string) string {
	if len(input) <= e.limit {
		return input
	}

	headLen := e.limit / 4
	head := input[:headLen]
	tail := input[len(input)-(e.limit-headLen):]
	return fmt.Sprintf("%s\n\n... [TRUNCATED %d bytes] ...\n\n%s", head, len(input)-e.limit, tail)
}
