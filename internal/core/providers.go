package core

import (
	"context"
	"encoding/json"
)

// AIProvider is a reasoning backend. A response carries either tool calls or
// final text. Backends wrap ErrMalformedResponse when no usable content exists.
type AIProvider interface {
	Chat(ctx context.Context, history []Message, tools []ToolDeclaration) (Message, error)
}

// ToolInvoker executes declared operations. Invoke never returns a Go error;
// failures travel inside the Result.
type ToolInvoker interface {
	Declare() []ToolDeclaration
	Invoke(ctx context.Context, name string, args json.RawMessage) Result
}
