package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_OneSessionPerKey(t *testing.T) {
	ai := &scriptedAI{responses: []func() (core.Message, error){text("ok")}}
	loop := NewLoop(ai, testRegistry(t))

	created := 0
	pool := NewPool(func(key string) *Session {
		created++
		return NewSession(context.Background(), loop, WithChannel("telegram:"+key))
	})

	var first, again, other *Session
	require.NoError(t, pool.With("1", func(s *Session) { first = s }))
	require.NoError(t, pool.With("1", func(s *Session) { again = s }))
	require.NoError(t, pool.With("2", func(s *Session) { other = s }))

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, "telegram:2", other.Channel())
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, pool.Len())
}

func TestPool_SerializesQueriesPerSession(t *testing.T) {
	ai := &scriptedAI{responses: []func() (core.Message, error){text("ok")}}
	loop := NewLoop(ai, testRegistry(t))
	pool := NewPool(func(key string) *Session {
		return NewSession(context.Background(), loop)
	})

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.With("chat", func(s *Session) {
				s.Run(context.Background(), "ping")
			})
		}()
	}
	wg.Wait()

	require.NoError(t, pool.With("chat", func(s *Session) {
		assert.Equal(t, n, s.Stats().Agent.QueriesProcessed)
	}))
}

func TestPool_Close(t *testing.T) {
	archive := &memArchive{}
	ai := &scriptedAI{responses: []func() (core.Message, error){text("ok")}}
	loop := NewLoop(ai, testRegistry(t))
	pool := NewPool(func(key string) *Session {
		return NewSession(context.Background(), loop, WithArchive(archive))
	})

	require.NoError(t, pool.With("a", func(s *Session) { s.Run(context.Background(), "hi") }))
	require.NoError(t, pool.With("b", func(s *Session) {}))

	require.NoError(t, pool.Close(context.Background()))
	assert.Len(t, archive.saved, 1)

	err := pool.With("a", func(s *Session) {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}
