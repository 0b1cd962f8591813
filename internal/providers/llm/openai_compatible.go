package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/kagglebot/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

type openAIMessage struct {
	Role       string          `json:"role"`
	Content    *string         `json:"content"`
	ToolCalls  []core.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
}

type openAITool struct {
	Type     string             `json:"type"`
	Function openAIToolFunction `json:"function"`
}

type openAIToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

func (o *OpenAICompatible) Chat(ctx context.Context, history []core.Message, tools []core.ToolDeclaration) (core.Message, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": toOpenAIMessages(history),
	}
	if len(tools) > 0 {
		payload["tools"] = toOpenAITools(tools)
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	data, err := o.postJSON(ctx, "/v1/chat/completions", payload, headers)
	if err != nil {
		return core.Message{}, err
	}
	return parseOpenAIResponse(data)
}

func toOpenAIMessages(history []core.Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(history))
	for _, m := range history {
		content := m.Content
		msg := openAIMessage{
			Role:       string(m.Role),
			Content:    &content,
			ToolCallID: m.ToolCallID,
		}
		if m.Role == core.RoleAssistant && len(m.ToolCalls) > 0 && m.Content == "" {
			msg.Content = nil
		}
		for _, tc := range m.ToolCalls {
			if tc.Type == "" {
				tc.Type = "function"
			}
			msg.ToolCalls = append(msg.ToolCalls, tc)
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(decls []core.ToolDeclaration) []openAITool {
	out := make([]openAITool, 0, len(decls))
	for _, d := range decls {
		out = append(out, openAITool{
			Type: "function",
			Function: openAIToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.SchemaJSON(),
			},
		})
	}
	return out
}

func parseOpenAIResponse(data []byte) (core.Message, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content   string          `json:"content"`
				ToolCalls []core.ToolCall `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Message{}, fmt.Errorf("%w: decode: %v", core.ErrMalformedResponse, err)
	}
	if len(result.Choices) == 0 {
		return core.Message{}, fmt.Errorf("%w: empty choices: %s", core.ErrMalformedResponse, clip(data))
	}

	choice := result.Choices[0].Message
	msg := core.Message{
		Role:      core.RoleAssistant,
		Content:   choice.Content,
		ToolCalls: choice.ToolCalls,
	}
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].ID == "" {
			msg.ToolCalls[i].ID = fmt.Sprintf("call_%d", i)
		}
	}
	return msg, nil
}
