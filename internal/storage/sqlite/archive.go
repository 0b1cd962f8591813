package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandevgo/kagglebot/internal/core"
)

var _ core.ArchiveRepository = (*ArchiveRepo)(nil)

// ErrSessionNotFound is returned by LoadSession for unknown ids.
var ErrSessionNotFound = fmt.Errorf("session %w", core.ErrNotFound)

type ArchiveRepo struct {
	db *sql.DB
}

func NewArchiveRepo(db *sql.DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

// SaveSession stores a finished session. Saving the same id again replaces it.
func (a *ArchiveRepo) SaveSession(ctx context.Context, snap core.SessionSnapshot) error {
	messages, err := json.Marshal(snap.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	logs, err := json.Marshal(snap.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}
	stats, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	errorCount := 0
	for _, e := range snap.Logs {
		if e.Level == core.LevelError {
			errorCount++
		}
	}

	query := `INSERT OR REPLACE INTO sessions
		(id, channel, started_at, ended_at, message_count, error_count, messages, logs, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = a.db.ExecContext(ctx, query,
		snap.ID, snap.Channel, snap.StartedAt.UTC(), snap.EndedAt.UTC(),
		len(snap.Messages), errorCount, string(messages), string(logs), string(stats),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ListSessions returns the most recently ended sessions first.
func (a *ArchiveRepo) ListSessions(ctx context.Context, limit int) ([]core.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, channel, started_at, ended_at, message_count, error_count
		 FROM sessions ORDER BY ended_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []core.SessionSummary
	for rows.Next() {
		var s core.SessionSummary
		if err := rows.Scan(&s.ID, &s.Channel, &s.StartedAt, &s.EndedAt, &s.MessageCount, &s.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadSession returns a stored session with its messages and log. Stats are
// returned as raw JSON.
func (a *ArchiveRepo) LoadSession(ctx context.Context, id string) (core.SessionSnapshot, error) {
	var snap core.SessionSnapshot
	var messages, logs, stats string
	err := a.db.QueryRowContext(ctx,
		`SELECT id, channel, started_at, ended_at, messages, logs, stats FROM sessions WHERE id = ?`, id,
	).Scan(&snap.ID, &snap.Channel, &snap.StartedAt, &snap.EndedAt, &messages, &logs, &stats)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SessionSnapshot{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return core.SessionSnapshot{}, fmt.Errorf("failed to load session: %w", err)
	}

	if err := json.Unmarshal([]byte(messages), &snap.Messages); err != nil {
		return core.SessionSnapshot{}, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	if err := json.Unmarshal([]byte(logs), &snap.Logs); err != nil {
		return core.SessionSnapshot{}, fmt.Errorf("failed to unmarshal logs: %w", err)
	}
	snap.Stats = json.RawMessage(stats)
	return snap, nil
}
