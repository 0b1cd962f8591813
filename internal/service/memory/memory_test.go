package memory

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestMemory_CapacityKeepsMostRecent(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		records  int
	}{
		{name: "below_capacity", capacity: 20, records: 7},
		{name: "exactly_capacity", capacity: 20, records: 20},
		{name: "one_over", capacity: 20, records: 21},
		{name: "many_over", capacity: 20, records: 95},
		{name: "tiny_capacity", capacity: 1, records: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.capacity, WithClock(fixedClock()))
			for i := 0; i < tt.records; i++ {
				m.Record(core.RoleUser, fmt.Sprintf("msg-%d", i))
				assert.LessOrEqual(t, m.Len(), tt.capacity)
			}

			want := tt.records
			if want > tt.capacity {
				want = tt.capacity
			}
			all := m.All()
			require.Len(t, all, want)

			first := tt.records - want
			for i, msg := range all {
				assert.Equal(t, fmt.Sprintf("msg-%d", first+i), msg.Content)
			}
		})
	}
}

func TestMemory_WindowScenario(t *testing.T) {
	m := New(DefaultCapacity, WithClock(fixedClock()))
	m.Record(core.RoleUser, "find competitions about loan default")
	m.Record(core.RoleAssistant, "Here are 3 matches...")

	var got []core.Message
	require.NoError(t, json.Unmarshal([]byte(m.Window(2)), &got))
	require.Len(t, got, 2)
	assert.Equal(t, core.RoleUser, got[0].Role)
	assert.Equal(t, "find competitions about loan default", got[0].Content)
	assert.Equal(t, core.RoleAssistant, got[1].Role)
	assert.Equal(t, "Here are 3 matches...", got[1].Content)
	assert.True(t, got[0].Timestamp.Before(got[1].Timestamp))
}

func TestMemory_WindowIsPure(t *testing.T) {
	m := New(DefaultCapacity, WithClock(fixedClock()))
	for i := 0; i < 8; i++ {
		m.Record(core.RoleUser, fmt.Sprintf("q%d", i))
	}

	first := m.Window(5)
	second := m.Window(5)
	assert.Equal(t, first, second)
	assert.Equal(t, 8, m.Len())

	var got []core.Message
	require.NoError(t, json.Unmarshal([]byte(first), &got))
	require.Len(t, got, 5)
	assert.Equal(t, "q3", got[0].Content)
	assert.Equal(t, "q7", got[4].Content)
}

func TestMemory_WindowEdges(t *testing.T) {
	m := New(DefaultCapacity)
	assert.Equal(t, "[]", m.Window(5))
	assert.Equal(t, "[]", m.Window(0))

	m.Record(core.RoleUser, "only")
	var got []core.Message
	require.NoError(t, json.Unmarshal([]byte(m.Window(10)), &got))
	assert.Len(t, got, 1)
}

func TestMemory_AllReturnsCopy(t *testing.T) {
	m := New(DefaultCapacity)
	m.Record(core.RoleUser, "original")

	all := m.All()
	all[0].Content = "mutated"

	assert.Equal(t, "original", m.All()[0].Content)
}

func TestMemory_ResetAndStats(t *testing.T) {
	m := New(DefaultCapacity)
	m.Record(core.RoleUser, "q1")
	m.Record(core.RoleAssistant, "a1")
	m.Record(core.RoleUser, "q2")

	s := m.Stats()
	assert.Equal(t, 3, s.TotalMessages)
	assert.Equal(t, 2, s.UserMessages)
	assert.Equal(t, 1, s.AssistantMessages)
	assert.Greater(t, s.WindowTokens, 0)

	m.Reset()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, Stats{}, m.Stats())
	assert.Equal(t, "[]", m.Window(5))
}

func TestMemory_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Capacity())
	assert.Equal(t, DefaultCapacity, New(-3).Capacity())
}
