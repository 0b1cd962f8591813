// Package memory keeps the bounded conversation history of one session.
//
// Messages are append-only. Once the history exceeds its capacity the oldest
// messages are evicted first. Window renders the most recent messages as JSON
// for prompt construction and never mutates the history.
//
// A Memory belongs to exactly one session and is not safe for concurrent use.
package memory

import (
	"encoding/json"
	"time"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/pkg/tokens"
)

const (
	DefaultCapacity = 20
	DefaultWindow   = 5
)

type Stats struct {
	TotalMessages     int `json:"total_messages"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
	WindowTokens      int `json:"window_tokens"`
}

type Option func(*Memory)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// WithWindow sets the window size used by Stats.
func WithWindow(k int) Option {
	return func(m *Memory) {
		if k > 0 {
			m.window = k
		}
	}
}

type Memory struct {
	capacity int
	window   int
	now      func() time.Time
	messages []core.Message
}

func New(capacity int, opts ...Option) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	m := &Memory{
		capacity: capacity,
		window:   DefaultWindow,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record appends a message stamped with the current time and evicts the
// oldest messages beyond capacity.
func (m *Memory) Record(role core.Role, content string) core.Message {
	msg := core.Message{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
	}
	m.messages = append(m.messages, msg)

	if over := len(m.messages) - m.capacity; over > 0 {
		kept := make([]core.Message, m.capacity)
		copy(kept, m.messages[over:])
		m.messages = kept
	}
	return msg
}

// Recent returns a copy of the last k messages in insertion order.
func (m *Memory) Recent(k int) []core.Message {
	if k <= 0 {
		return []core.Message{}
	}
	start := len(m.messages) - k
	if start < 0 {
		start = 0
	}
	out := make([]core.Message, len(m.messages)-start)
	copy(out, m.messages[start:])
	return out
}

// Window serializes the last k messages as a JSON array.
func (m *Memory) Window(k int) string {
	data, err := json.Marshal(m.Recent(k))
	if err != nil {
		return "[]"
	}
	return string(data)
}

// All returns a copy of the retained history.
func (m *Memory) All() []core.Message {
	out := make([]core.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *Memory) Len() int {
	return len(m.messages)
}

func (m *Memory) Capacity() int {
	return m.capacity
}

// Reset drops every message.
func (m *Memory) Reset() {
	m.messages = nil
}

func (m *Memory) Stats() Stats {
	s := Stats{TotalMessages: len(m.messages)}
	for _, msg := range m.messages {
		switch msg.Role {
		case core.RoleUser:
			s.UserMessages++
		case core.RoleAssistant:
			s.AssistantMessages++
		}
	}
	if s.TotalMessages > 0 {
		s.WindowTokens = tokens.Count(m.Window(m.window))
	}
	return s
}
