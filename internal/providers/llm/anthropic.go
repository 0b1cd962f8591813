package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/kagglebot/internal/core"
)

type Anthropic struct {
	baseProvider
}

func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", apiKey, model),
	}
}

type anthropicBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

func (a *Anthropic) Chat(ctx context.Context, history []core.Message, tools []core.ToolDeclaration) (core.Message, error) {
	system, messages := toAnthropicMessages(history)

	payload := map[string]any{
		"model":      a.model,
		"max_tokens": 4096,
		"messages":   messages,
	}
	if system != "" {
		payload["system"] = system
	}
	if len(tools) > 0 {
		defs := make([]anthropicTool, 0, len(tools))
		for _, t := range tools {
			defs = append(defs, anthropicTool{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: t.SchemaJSON(),
			})
		}
		payload["tools"] = defs
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}

	data, err := a.postJSON(ctx, "/v1/messages", payload, headers)
	if err != nil {
		return core.Message{}, err
	}
	return parseAnthropicResponse(data)
}

// toAnthropicMessages lifts system turns into the system prompt and groups
// consecutive tool results into one user turn.
func toAnthropicMessages(history []core.Message) (string, []anthropicMessage) {
	var (
		system []string
		out    []anthropicMessage
	)
	push := func(role string, blocks ...anthropicBlock) {
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropicMessage{Role: role, Content: blocks})
	}

	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, m.Content)
		case core.RoleUser:
			push("user", anthropicBlock{Type: "text", Text: m.Content})
		case core.RoleTool:
			push("user", anthropicBlock{Type: "tool_result", ToolUseID: m.ToolCallID, Content: m.Content})
		case core.RoleAssistant:
			var blocks []anthropicBlock
			if m.Content != "" {
				blocks = append(blocks, anthropicBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				input := json.RawMessage(tc.Function.Arguments)
				if !json.Valid(input) {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropicBlock{Type: "tool_use", ID: tc.ID, Name: tc.Function.Name, Input: input})
			}
			if len(blocks) > 0 {
				push("assistant", blocks...)
			}
		}
	}
	return strings.Join(system, "\n\n"), out
}

func parseAnthropicResponse(data []byte) (core.Message, error) {
	var result struct {
		Content []anthropicBlock `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Message{}, fmt.Errorf("%w: decode: %v", core.ErrMalformedResponse, err)
	}
	if len(result.Content) == 0 {
		return core.Message{}, fmt.Errorf("%w: empty content", core.ErrMalformedResponse)
	}

	msg := core.Message{Role: core.RoleAssistant}
	var text strings.Builder
	for _, c := range result.Content {
		switch c.Type {
		case "text":
			text.WriteString(c.Text)
		case "tool_use":
			args := string(c.Input)
			if args == "" {
				args = "{}"
			}
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
				ID:       c.ID,
				Type:     "function",
				Function: core.FunctionCall{Name: c.Name, Arguments: args},
			})
		}
	}
	msg.Content = text.String()
	return msg, nil
}
