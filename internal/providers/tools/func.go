package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sandevgo/kagglebot/internal/core"
)

// NewFunc declares a tool whose parameter schema is derived from ArgType.
// Fields without omitempty are required; the jsonschema tag is the description.
func NewFunc[ArgType any](name, description string, fn func(ctx context.Context, arg ArgType) (string, error)) (Tool, error) {
	schema, err := jsonschema.For[ArgType](nil)
	if err != nil {
		return Tool{}, fmt.Errorf("schema for %s: %w", name, err)
	}

	return Tool{
		Declaration: core.ToolDeclaration{
			Name:        name,
			Description: description,
			Parameters:  schema,
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var v ArgType
			if err := unmarshalJSON(raw, &v); err != nil {
				return "", fmt.Errorf("%w: unmarshal %q: %v", core.ErrInvalidArguments, raw, err)
			}
			return fn(ctx, v)
		},
	}, nil
}

func MustFunc[ArgType any](name, description string, fn func(ctx context.Context, arg ArgType) (string, error)) Tool {
	t, err := NewFunc(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}
