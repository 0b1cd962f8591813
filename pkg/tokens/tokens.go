// Package tokens estimates prompt sizes with the cl100k_base encoding.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// Count returns the number of tokens in text. When the encoding cannot be
// loaded (offline host) it falls back to the 4-bytes-per-token heuristic.
func Count(text string) int {
	if text == "" {
		return 0
	}
	enc, err := getTokenizer()
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
