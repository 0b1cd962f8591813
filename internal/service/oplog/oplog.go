// Package oplog is the per-session operation log. Entries are append-only;
// a session resets its log by replacing the Log wholesale.
package oplog

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sandevgo/kagglebot/internal/core"
)

const (
	EventQueryReceived  = "query received"
	EventToolStarted    = "tool invocation started"
	EventToolSucceeded  = "tool invocation succeeded"
	EventToolFailed     = "tool invocation failed"
	EventParseFailed    = "response parsing failed"
	EventIterationLimit = "iteration limit exceeded"
	EventBackendFailed  = "backend call failed"
	EventQueryCanceled  = "query canceled"
	EventQueryCompleted = "query completed"
)

type Stats struct {
	TotalLogs  int `json:"total_logs"`
	InfoCount  int `json:"info_count"`
	ErrorCount int `json:"error_count"`
}

type Log struct {
	entries []core.LogEntry
	now     func() time.Time
	mirror  *zerolog.Logger
}

// New creates an empty log. Entries are mirrored to mirror when it is non-nil.
func New(mirror *zerolog.Logger) *Log {
	return &Log{
		now:    time.Now,
		mirror: mirror,
	}
}

// Record appends one entry. It never fails.
func (l *Log) Record(level core.Level, event string, details core.Fields) {
	if details == nil {
		details = core.Fields{}
	}
	entry := core.LogEntry{
		Timestamp: l.now(),
		Level:     level,
		Event:     event,
		Details:   details,
	}
	l.entries = append(l.entries, entry)

	if l.mirror == nil {
		return
	}
	ev := l.mirror.Debug()
	if level == core.LevelError {
		ev = l.mirror.Warn()
	}
	ev.Fields(map[string]any(details)).Msg(event)
}

func (l *Log) Info(event string, details core.Fields) {
	l.Record(core.LevelInfo, event, details)
}

func (l *Log) Error(event string, details core.Fields) {
	l.Record(core.LevelError, event, details)
}

func (l *Log) Stats() Stats {
	s := Stats{TotalLogs: len(l.entries)}
	for _, e := range l.entries {
		switch e.Level {
		case core.LevelInfo:
			s.InfoCount++
		case core.LevelError:
			s.ErrorCount++
		}
	}
	return s
}

// Export returns a copy of the ordered log.
func (l *Log) Export() []core.LogEntry {
	out := make([]core.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	return len(l.entries)
}
