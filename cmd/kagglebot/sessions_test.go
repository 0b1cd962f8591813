package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/kagglebot/internal/core"
)

func TestRenderSessions(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := renderSessions([]core.SessionSummary{{
		ID:           "5f1c",
		Channel:      "telegram:42",
		StartedAt:    start,
		EndedAt:      start.Add(95 * time.Second),
		MessageCount: 6,
		ErrorCount:   1,
	}})

	for _, want := range []string{"ID", "CHANNEL", "5f1c", "telegram:42", "1m35s", "6"} {
		assert.Contains(t, out, want)
	}
}
