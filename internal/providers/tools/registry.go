package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
	"github.com/sandevgo/kagglebot/internal/core"
)

// Handler executes one operation with JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool binds a declaration to its handler.
type Tool struct {
	Declaration core.ToolDeclaration
	Handler     Handler
}

var _ core.ToolInvoker = (*Registry)(nil)

// Registry is the closed table of callable operations. Every declared name is
// bound to a handler when the registry is built.
type Registry struct {
	decls    []core.ToolDeclaration
	handlers map[string]Handler
	schemas  map[string]*jsonschema.Resolved
}

// NewRegistry validates that every declaration is unique and bound to a
// handler. Handlers without a declaration are ignored.
func NewRegistry(decls []core.ToolDeclaration, handlers map[string]Handler) (*Registry, error) {
	r := &Registry{
		decls:    make([]core.ToolDeclaration, 0, len(decls)),
		handlers: make(map[string]Handler, len(decls)),
		schemas:  make(map[string]*jsonschema.Resolved, len(decls)),
	}

	var errs []error
	for _, d := range decls {
		if d.Name == "" {
			errs = append(errs, errors.New("declaration with empty name"))
			continue
		}
		if _, dup := r.handlers[d.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate declaration %q", d.Name))
			continue
		}
		h, ok := handlers[d.Name]
		if !ok || h == nil {
			errs = append(errs, fmt.Errorf("declaration %q has no bound handler", d.Name))
			continue
		}
		if d.Parameters != nil {
			resolved, err := d.Parameters.Resolve(nil)
			if err != nil {
				errs = append(errs, fmt.Errorf("declaration %q: invalid schema: %w", d.Name, err))
				continue
			}
			r.schemas[d.Name] = resolved
		}
		r.handlers[d.Name] = h
		r.decls = append(r.decls, d)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// FromTools builds a registry from declaration/handler pairs, keeping order.
func FromTools(tools ...Tool) (*Registry, error) {
	decls := make([]core.ToolDeclaration, 0, len(tools))
	handlers := make(map[string]Handler, len(tools))
	for _, t := range tools {
		decls = append(decls, t.Declaration)
		if _, exists := handlers[t.Declaration.Name]; !exists {
			handlers[t.Declaration.Name] = t.Handler
		}
	}
	return NewRegistry(decls, handlers)
}

// Declare returns the declarations in registration order.
func (r *Registry) Declare() []core.ToolDeclaration {
	out := make([]core.ToolDeclaration, len(r.decls))
	copy(out, r.decls)
	return out
}

func (r *Registry) Resolve(name string) (Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownTool, name)
	}
	return h, nil
}

// Invoke runs the named operation. Handler errors and panics come back as
// failed results; Invoke itself never fails.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (res core.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = core.Fail(core.KindToolExecution, name, fmt.Errorf("panic: %v", p))
		}
	}()

	h, err := r.Resolve(name)
	if err != nil {
		return core.Fail(core.KindUnknownTool, name, err)
	}

	parsed, err := decodeArgs(args)
	if err != nil {
		return core.Fail(core.KindToolExecution, name, fmt.Errorf("%w: %v", core.ErrInvalidArguments, err))
	}

	if schema, ok := r.schemas[name]; ok {
		if err := schema.Validate(parsed); err != nil {
			return core.Fail(core.KindToolExecution, name, fmt.Errorf("%w: %v", core.ErrInvalidArguments, err))
		}
	}

	normalized, err := json.Marshal(parsed)
	if err != nil {
		return core.Fail(core.KindToolExecution, name, fmt.Errorf("%w: %v", core.ErrInvalidArguments, err))
	}

	out, err := h(ctx, normalized)
	if err != nil {
		return core.Fail(core.KindToolExecution, name, err)
	}
	return core.Ok(out)
}

// decodeArgs parses the argument object, repairing malformed JSON the way
// models sometimes emit it.
func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := unmarshalJSON(trimmed, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
