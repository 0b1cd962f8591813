package core

import (
	"context"
	"time"
)

type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

type ArchiveRepository interface {
	SaveSession(ctx context.Context, snap SessionSnapshot) error
	ListSessions(ctx context.Context, limit int) ([]SessionSummary, error)
}

// SessionSnapshot is a finished session as stored in the archive.
type SessionSnapshot struct {
	ID        string     `json:"id"`
	Channel   string     `json:"channel"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	Messages  []Message  `json:"messages"`
	Logs      []LogEntry `json:"logs"`
	Stats     any        `json:"stats"`
}

type SessionSummary struct {
	ID           string    `json:"id"`
	Channel      string    `json:"channel"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	MessageCount int       `json:"message_count"`
	ErrorCount   int       `json:"error_count"`
}
