package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kagglebot/internal/core"
)

func newTestDB(t *testing.T) *CacheRepo {
	t.Helper()
	db, err := NewDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCacheRepo(db)
}

func TestCacheRepo(t *testing.T) {
	ctx := context.Background()
	cache := newTestDB(t)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "k", "v1", time.Minute))
	val, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", val)

	require.NoError(t, cache.Put(ctx, "k", "v2", time.Minute))
	val, _, _ = cache.Get(ctx, "k")
	assert.Equal(t, "v2", val)

	now = now.Add(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestArchiveRepo(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo := NewArchiveRepo(db)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := range 3 {
		snap := core.SessionSnapshot{
			ID:        fmt.Sprintf("s%d", i),
			Channel:   "cli",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			EndedAt:   base.Add(time.Duration(i)*time.Hour + time.Minute),
			Messages: []core.Message{
				{Role: core.RoleUser, Content: "find competitions about loan default", Timestamp: base},
				{Role: core.RoleAssistant, Content: "Here are 3 matches...", Timestamp: base},
			},
			Logs: []core.LogEntry{
				{Timestamp: base, Level: core.LevelInfo, Event: "query received", Details: core.Fields{"query": "x"}},
				{Timestamp: base, Level: core.LevelError, Event: "tool failed", Details: core.Fields{"tool": "t"}},
			},
			Stats: map[string]int{"errors": 1},
		}
		require.NoError(t, repo.SaveSession(ctx, snap))
	}

	list, err := repo.ListSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, "s1", list[1].ID)
	assert.Equal(t, 2, list[0].MessageCount)
	assert.Equal(t, 1, list[0].ErrorCount)
	assert.True(t, list[0].StartedAt.Equal(base.Add(2*time.Hour)))

	// saving again replaces
	require.NoError(t, repo.SaveSession(ctx, core.SessionSnapshot{ID: "s0", Channel: "telegram", StartedAt: base, EndedAt: base.Add(10 * time.Hour)}))
	list, err = repo.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "s0", list[0].ID)
	assert.Equal(t, "telegram", list[0].Channel)
	assert.Equal(t, 0, list[0].MessageCount)

	snap, err := repo.LoadSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "Here are 3 matches...", snap.Messages[1].Content)
	require.Len(t, snap.Logs, 2)
	assert.Equal(t, core.LevelError, snap.Logs[1].Level)
	assert.JSONEq(t, `{"errors":1}`, string(snap.Stats.(json.RawMessage)))

	_, err = repo.LoadSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
