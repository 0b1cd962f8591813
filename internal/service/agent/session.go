package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/memory"
	"github.com/sandevgo/kagglebot/internal/service/oplog"
	"github.com/sandevgo/kagglebot/pkg/log"
)

// Stats is the aggregated view of a session, recomputed on every call.
type Stats struct {
	Agent  Counters     `json:"agent_stats"`
	Memory memory.Stats `json:"memory_stats"`
	Logger oplog.Stats  `json:"logger_stats"`
}

type SessionOption func(*Session)

func WithChannel(channel string) SessionOption {
	return func(s *Session) {
		s.channel = channel
	}
}

// WithArchive stores the session when it is reset or closed.
func WithArchive(repo core.ArchiveRepository) SessionOption {
	return func(s *Session) {
		s.archive = repo
	}
}

func WithMemoryCapacity(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func WithWindowSize(k int) SessionOption {
	return func(s *Session) {
		if k > 0 {
			s.window = k
		}
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// Session owns the memory, operation log and counters of one conversation.
// It serves one query at a time and is not safe for concurrent use; see Pool.
type Session struct {
	loop     *Loop
	archive  core.ArchiveRepository
	channel  string
	capacity int
	window   int
	now      func() time.Time
	base     zerolog.Logger

	id        string
	startedAt time.Time
	memory    *memory.Memory
	journal   *oplog.Log
	counters  Counters
}

func NewSession(ctx context.Context, loop *Loop, opts ...SessionOption) *Session {
	s := &Session{
		loop:     loop,
		channel:  "cli",
		capacity: memory.DefaultCapacity,
		window:   memory.DefaultWindow,
		now:      time.Now,
		base:     *log.FromCtx(ctx),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.start()

	s.base.Info().
		Str("session", s.id).
		Str("channel", s.channel).
		Int("tools", len(loop.Tools())).
		Msg("agent initialized")
	return s
}

func (s *Session) start() {
	s.id = uuid.NewString()
	s.startedAt = s.now()
	s.memory = memory.New(s.capacity, memory.WithClock(s.now), memory.WithWindow(s.window))
	mirror := s.base.With().Str("session", s.id).Logger()
	s.journal = oplog.New(&mirror)
	s.counters = Counters{}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Channel() string {
	return s.channel
}

// Run processes one query and returns the answer text. It never fails.
func (s *Session) Run(ctx context.Context, query string) string {
	return Present(s.Ask(ctx, query, nil))
}

// Ask processes one query and returns the typed loop result. The presented
// answer is what gets recorded in memory.
func (s *Session) Ask(ctx context.Context, query string, onUpdate func(core.Message)) core.Result {
	started := s.now()
	s.journal.Info(oplog.EventQueryReceived, core.Fields{"query": query})
	s.counters.QueriesProcessed++
	s.memory.Record(core.RoleUser, query)

	res := s.loop.Run(ctx, Turn{
		Window:   s.memory.Window(s.window),
		Query:    query,
		Journal:  s.journal,
		Counters: &s.counters,
		OnUpdate: onUpdate,
	})

	s.memory.Record(core.RoleAssistant, Present(res))

	status := "ok"
	if !res.OK() {
		status = string(res.Kind())
	}
	s.journal.Info(oplog.EventQueryCompleted, core.Fields{
		"status":      status,
		"duration_ms": s.now().Sub(started).Milliseconds(),
	})
	return res
}

// Reset archives the current conversation and starts a fresh one: empty
// memory, empty log, zeroed counters, new id. The reset itself happens even
// when archiving fails.
func (s *Session) Reset(ctx context.Context) error {
	err := s.save(ctx)
	prev := s.id
	s.start()
	s.base.Info().Str("previous", prev).Str("session", s.id).Msg("session reset")
	return err
}

// Close archives the session. The session stays usable.
func (s *Session) Close(ctx context.Context) error {
	return s.save(ctx)
}

func (s *Session) save(ctx context.Context) error {
	if s.archive == nil || (s.memory.Len() == 0 && s.journal.Len() == 0) {
		return nil
	}
	snap := core.SessionSnapshot{
		ID:        s.id,
		Channel:   s.channel,
		StartedAt: s.startedAt,
		EndedAt:   s.now(),
		Messages:  s.memory.All(),
		Logs:      s.journal.Export(),
		Stats:     s.Stats(),
	}
	if err := s.archive.SaveSession(ctx, snap); err != nil {
		return fmt.Errorf("archive session %s: %w", s.id, err)
	}
	return nil
}

func (s *Session) Stats() Stats {
	return Stats{
		Agent:  s.counters,
		Memory: s.memory.Stats(),
		Logger: s.journal.Stats(),
	}
}

func (s *Session) History() []core.Message {
	return s.memory.All()
}

func (s *Session) Logs() []core.LogEntry {
	return s.journal.Export()
}

func (s *Session) Tools() []core.ToolDeclaration {
	return s.loop.Tools()
}
