package oplog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_RecordAndStats(t *testing.T) {
	l := New(nil)
	l.Info(EventQueryReceived, core.Fields{"query": "titanic"})
	l.Info(EventToolStarted, core.Fields{"tool": "find_similar_competitions"})
	l.Error(EventToolFailed, core.Fields{"tool": "find_similar_competitions", "error": "boom"})
	l.Info(EventQueryCompleted, nil)

	assert.Equal(t, Stats{TotalLogs: 4, InfoCount: 3, ErrorCount: 1}, l.Stats())

	entries := l.Export()
	require.Len(t, entries, 4)
	assert.Equal(t, EventQueryReceived, entries[0].Event)
	assert.Equal(t, core.LevelError, entries[2].Level)
	assert.Equal(t, "boom", entries[2].Details["error"])
	assert.NotNil(t, entries[3].Details)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp))
	}
}

func TestLog_ExportIsCopy(t *testing.T) {
	l := New(nil)
	l.Info(EventQueryReceived, nil)

	exported := l.Export()
	exported[0].Event = "mutated"

	assert.Equal(t, EventQueryReceived, l.Export()[0].Event)
}

func TestLog_MirrorsToZerolog(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.DebugLevel)

	l := New(&zl)
	l.Error(EventParseFailed, core.Fields{"error": "no candidates"})

	assert.Contains(t, buf.String(), EventParseFailed)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "no candidates")
}

func TestLog_Empty(t *testing.T) {
	l := New(nil)
	assert.Equal(t, Stats{}, l.Stats())
	assert.Empty(t, l.Export())
	assert.Equal(t, 0, l.Len())
}
