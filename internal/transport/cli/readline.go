package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/agent"
	"github.com/sandevgo/kagglebot/internal/service/command"
	"github.com/sandevgo/kagglebot/internal/service/ui"
	"github.com/sandevgo/kagglebot/pkg/log"
)

const banner = "Assistant is ready. Type 'exit' to quit.\nAvailable commands: !stats, !history, !logs, !reset, !tools, !help"

type ReadLine struct {
	session *agent.Session
	router  *command.Router
	rl      *readline.Instance
	onExit  func()
}

// NewReadLine starts a REPL bound to one session. onExit runs when the user
// quits so the caller can stop the process.
func NewReadLine(session *agent.Session, router *command.Router, runtimePath string, onExit func()) (*ReadLine, error) {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.PromptStyle.Render("You: "),
		HistoryFile:     filepath.Join(runtimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		session: session,
		router:  router,
		rl:      rl,
		onExit:  onExit,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	defer func() {
		if r.onExit != nil {
			r.onExit()
		}
	}()

	out := r.rl.Stdout()
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, strings.Repeat("-", 50))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			return err
		}

		if quit := r.handle(ctx, out, line); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether the user asked to quit.
func (r *ReadLine) handle(ctx context.Context, out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case strings.EqualFold(line, "exit"):
		fmt.Fprintln(out, "Goodbye!")
		return true
	}

	if reply, ok := r.router.Execute(ctx, r.session, line); ok {
		fmt.Fprintln(out, reply)
		return false
	}

	res := r.session.Ask(ctx, line, func(msg core.Message) {
		for _, tc := range msg.ToolCalls {
			fmt.Fprintln(out, ui.ToolStyle.Render(fmt.Sprintf("  > %s %s", tc.Function.Name, tc.Function.Arguments)))
		}
	})
	answer := agent.Present(res)
	if !res.OK() {
		log.FromCtx(ctx).Debug().Err(res.Failure).Msg("query ended without an answer")
		answer = ui.ErrorStyle.Render(answer)
	}
	fmt.Fprintf(out, "%s %s\n", ui.AssistantStyle.Render("Assistant:"), answer)
	return false
}

// Shutdown archives the session and closes the terminal.
func (r *ReadLine) Shutdown(ctx context.Context) error {
	err := r.session.Close(context.WithoutCancel(ctx))
	if r.rl != nil {
		err = errors.Join(err, r.rl.Close())
	}
	return err
}
