package core

import (
	"encoding/json"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	AppName          = "KaggleBot"
	AppUserAgent     = "KaggleBot-Agent/0.1"
	AppRepositoryURL = "https://github.com/sandevgo/kagglebot"
	AppVersion       = "0.1.0"

	// BrowserUserAgent is sent by page fetches; several sites block non-browser agents.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolDeclaration describes one operation the reasoning backend may request.
type ToolDeclaration struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Required lists the parameter names the schema marks as required.
func (d ToolDeclaration) Required() []string {
	if d.Parameters == nil {
		return nil
	}
	return d.Parameters.Required
}

// SchemaJSON returns the parameter schema in wire form. An absent schema
// is rendered as an empty object schema.
func (d ToolDeclaration) SchemaJSON() json.RawMessage {
	if d.Parameters == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	data, err := json.Marshal(d.Parameters)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one turn. Conversation memory only holds user and assistant
// messages; tool fields are used by the per-query transcript sent to a backend.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp,omitzero"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Fields carries the details of a log entry.
type Fields map[string]any

// LogEntry is one operation log record.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Event     string    `json:"event"`
	Details   Fields    `json:"details"`
}
