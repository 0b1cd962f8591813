package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/oplog"
	"github.com/sandevgo/kagglebot/pkg/log"
	"github.com/sandevgo/kagglebot/pkg/tokens"
)

const DefaultMaxIterations = 8

var errEmptyContent = fmt.Errorf("%w: no text and no tool call", core.ErrMalformedResponse)

type LoopOption func(*Loop)

// WithMaxIterations caps the number of backend calls per query.
func WithMaxIterations(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithResultLimit bounds the size of each observation fed back to the backend.
func WithResultLimit(n int) LoopOption {
	return func(l *Loop) {
		l.exec = NewExecutor(l.tools, n)
	}
}

func WithSystemPrompt(prompt string) LoopOption {
	return func(l *Loop) {
		l.system = prompt
	}
}

// Loop drives the reason-act cycle for one query. It holds no session state;
// the caller passes the journal and counters of the owning session.
type Loop struct {
	ai            core.AIProvider
	tools         core.ToolInvoker
	exec          *Executor
	maxIterations int
	system        string
}

func NewLoop(ai core.AIProvider, tools core.ToolInvoker, opts ...LoopOption) *Loop {
	l := &Loop{
		ai:            ai,
		tools:         tools,
		maxIterations: DefaultMaxIterations,
		system:        DefaultSystemPrompt,
	}
	l.exec = NewExecutor(tools, DefaultResultLimit)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Turn is the input of one loop run.
type Turn struct {
	Window   string
	Query    string
	Journal  *oplog.Log
	Counters *Counters
	OnUpdate func(core.Message)
}

func (l *Loop) Tools() []core.ToolDeclaration {
	return l.tools.Declare()
}

func (l *Loop) MaxIterations() int {
	return l.maxIterations
}

// Run always returns a Result. Tool failures are folded back into the
// transcript; only backend failures, cancellation and the iteration cap end
// the query early.
func (l *Loop) Run(ctx context.Context, turn Turn) core.Result {
	logger := log.FromCtx(ctx)

	transcript := make([]core.Message, 0, 2+2*l.maxIterations)
	if l.system != "" {
		transcript = append(transcript, core.Message{Role: core.RoleSystem, Content: l.system})
	}
	prompt := initialPrompt(turn.Window, turn.Query)
	transcript = append(transcript, core.Message{Role: core.RoleUser, Content: prompt})
	logger.Debug().Int("tokens", tokens.Count(prompt)).Msg("prompt built")

	decls := l.tools.Declare()

	for i := 1; i <= l.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return l.fail(turn, core.KindCanceled, oplog.EventQueryCanceled, err, i)
		}

		resp, err := l.ai.Chat(ctx, transcript, decls)
		if err != nil {
			switch {
			case errors.Is(err, core.ErrMalformedResponse):
				return l.fail(turn, core.KindResponseParse, oplog.EventParseFailed, err, i)
			case ctx.Err() != nil:
				return l.fail(turn, core.KindCanceled, oplog.EventQueryCanceled, ctx.Err(), i)
			default:
				return l.fail(turn, core.KindBackend, oplog.EventBackendFailed, err, i)
			}
		}

		resp.Role = core.RoleAssistant
		if turn.OnUpdate != nil {
			turn.OnUpdate(resp)
		}

		if len(resp.ToolCalls) == 0 {
			answer := strings.TrimSpace(resp.Content)
			if answer == "" {
				return l.fail(turn, core.KindResponseParse, oplog.EventParseFailed, errEmptyContent, i)
			}
			logger.Debug().Int("iteration", i).Int("tokens", tokens.Count(answer)).Msg("final answer")
			return core.Ok(answer)
		}

		logger.Debug().Int("iteration", i).Int("calls", len(resp.ToolCalls)).Msg("tool calls requested")
		transcript = append(transcript, resp)
		transcript = append(transcript, l.exec.Execute(ctx, resp.ToolCalls, turn.Journal, turn.Counters)...)
	}

	err := fmt.Errorf("no final answer after %d iterations", l.maxIterations)
	return l.fail(turn, core.KindIterationLimit, oplog.EventIterationLimit, err, l.maxIterations)
}

func (l *Loop) fail(turn Turn, kind core.ErrorKind, event string, err error, iteration int) core.Result {
	turn.Counters.Errors++
	turn.Journal.Error(event, core.Fields{
		"kind":      string(kind),
		"error":     err.Error(),
		"iteration": iteration,
	})
	return core.Fail(kind, "", err)
}
