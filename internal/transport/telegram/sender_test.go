package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitHTML(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{name: "short", text: "hello", maxLen: 10, want: []string{"hello"}},
		{name: "newline break", text: "aaaaaa\nbbbbbb", maxLen: 10, want: []string{"aaaaaa", "bbbbbb"}},
		{name: "hard cut", text: "abcdefghijkl", maxLen: 5, want: []string{"abcde", "fghij", "kl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitHTML(tt.text, tt.maxLen))
		})
	}
}

func TestSplitHTML_RespectsLimit(t *testing.T) {
	text := strings.Repeat("line of a long stats dump\n", 400)
	for _, chunk := range splitHTML(text, maxPreformattedLen) {
		assert.LessOrEqual(t, len(chunk), maxPreformattedLen)
	}
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "-100123", sessionKey(-100123))
}
