package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"

	"github.com/sandevgo/kagglebot/internal/core"
)

// localCallPrefix marks call ids minted here for calls Gemini sent without one.
// They are not echoed back to the API.
const localCallPrefix = "local_"

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	models geminiModels
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{
		models: client.Models,
		model:  strings.TrimPrefix(model, "models/"),
	}, nil
}

func (g *Gemini) Chat(ctx context.Context, history []core.Message, tools []core.ToolDeclaration) (core.Message, error) {
	cfg, contents := geminiConvHistory(history)
	if len(contents) == 0 {
		return core.Message{}, errors.New("gemini: no contents")
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  geminiConvSchema(t.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return core.Message{}, geminiErr(err)
	}
	return geminiConvResponse(resp)
}

func geminiErr(err error) error {
	var gax *apierror.APIError
	if errors.As(err, &gax) {
		return fmt.Errorf("gemini: %w", gax.Unwrap())
	}
	var api genai.APIError
	if errors.As(err, &api) {
		return fmt.Errorf("gemini http %d: %s", api.Code, api.Message)
	}
	return fmt.Errorf("gemini: %w", err)
}

func geminiConvResponse(resp *genai.GenerateContentResponse) (core.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return core.Message{}, fmt.Errorf("%w: no candidates", core.ErrMalformedResponse)
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return core.Message{}, fmt.Errorf("%w: no content parts (finish reason %q)", core.ErrMalformedResponse, cand.FinishReason)
	}

	msg := core.Message{Role: core.RoleAssistant}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
		if fc := p.FunctionCall; fc != nil {
			args, err := json.Marshal(fc.Args)
			if err != nil || fc.Args == nil {
				args = []byte("{}")
			}
			id := fc.ID
			if id == "" {
				id = fmt.Sprintf("%s%d", localCallPrefix, len(msg.ToolCalls))
			}
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
				ID:       id,
				Type:     "function",
				Function: core.FunctionCall{Name: fc.Name, Arguments: string(args)},
			})
		}
	}
	msg.Content = sb.String()
	return msg, nil
}

// geminiConvHistory maps the transcript onto Gemini contents. Consecutive
// turns with the same role are merged into one content.
func geminiConvHistory(history []core.Message) (*genai.GenerateContentConfig, []*genai.Content) {
	cfg := &genai.GenerateContentConfig{}

	var (
		system   []*genai.Part
		contents []*genai.Content
		last     *genai.Content
	)
	push := func(role string, parts ...*genai.Part) {
		if len(parts) == 0 {
			return
		}
		if last != nil && last.Role == role {
			last.Parts = append(last.Parts, parts...)
			return
		}
		last = &genai.Content{Role: role, Parts: parts}
		contents = append(contents, last)
	}

	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, genai.NewPartFromText(m.Content))
		case core.RoleUser:
			push("user", genai.NewPartFromText(m.Content))
		case core.RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var args map[string]any
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					args = map[string]any{"text": tc.Function.Arguments}
				}
				p := genai.NewPartFromFunctionCall(tc.Function.Name, args)
				if !strings.HasPrefix(tc.ID, localCallPrefix) {
					p.FunctionCall.ID = tc.ID
				}
				parts = append(parts, p)
			}
			push("model", parts...)
		case core.RoleTool:
			p := genai.NewPartFromFunctionResponse(m.Name, map[string]any{"result": m.Content})
			if !strings.HasPrefix(m.ToolCallID, localCallPrefix) {
				p.FunctionResponse.ID = m.ToolCallID
			}
			push("user", p)
		}
	}

	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: system}
	}
	return cfg, contents
}

func geminiConvSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	enums := make([]string, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}

	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Enum:        enums,
		Items:       geminiConvSchema(schema.Items),
		Required:    schema.Required,
	}

	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = geminiConvSchema(prop)
		}
	}

	typ := schema.Type
	if typ == "" {
		for _, t := range schema.Types {
			if t != "null" {
				typ = t
				gs.Nullable = genai.Ptr(true)
				break
			}
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}
