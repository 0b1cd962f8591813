package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/pkg/log"
)

var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// Server exposes the tool registry to MCP clients over stdio.
type Server struct {
	mcp    *server.MCPServer
	in     io.Reader
	out    io.Writer
	onExit func()
}

type Option func(*Server)

// WithStdio replaces os.Stdin and os.Stdout.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithOnExit is called when the client closes the stream.
func WithOnExit(fn func()) Option {
	return func(s *Server) {
		s.onExit = fn
	}
}

func NewServer(tools core.ToolInvoker, opts ...Option) (*Server, error) {
	s := &Server{
		mcp: server.NewMCPServer(core.AppName, core.AppVersion, server.WithToolCapabilities(false)),
		in:  os.Stdin,
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, d := range tools.Declare() {
		schema := emptyObjectSchema
		if d.Parameters != nil {
			raw, err := json.Marshal(d.Parameters)
			if err != nil {
				return nil, fmt.Errorf("marshal schema for %s: %w", d.Name, err)
			}
			schema = raw
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(d.Name, d.Description, schema), handler(tools))
	}
	return s, nil
}

// MCP returns the underlying server, for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func handler(tools core.ToolInvoker) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := json.RawMessage("{}")
		if raw := req.GetRawArguments(); raw != nil {
			b, err := json.Marshal(raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			args = b
		}

		log.FromCtx(ctx).Info().Str("tool", req.Params.Name).RawJSON("args", args).Msg("mcp tool call")

		res := tools.Invoke(ctx, req.Params.Name, args)
		if !res.OK() {
			return mcp.NewToolResultError(res.Observation()), nil
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s.onExit != nil {
		defer s.onExit()
	}

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.NewStdLogger(ctx, "mcp"))

	log.FromCtx(ctx).Info().Msg("serving MCP over stdio")
	err := stdio.Listen(ctx, s.in, s.out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}
