package agent

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("session pool closed")

type pooled struct {
	mu      sync.Mutex
	session *Session
}

// Pool hands out one Session per key and serializes access to each of them.
// Different keys run concurrently.
type Pool struct {
	mu       sync.Mutex
	closed   bool
	sessions map[string]*pooled
	create   func(key string) *Session
}

func NewPool(create func(key string) *Session) *Pool {
	return &Pool{
		sessions: make(map[string]*pooled),
		create:   create,
	}
}

// With runs fn with exclusive access to the session for key, creating it on
// first use.
func (p *Pool) With(key string, fn func(*Session)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	entry, ok := p.sessions[key]
	if !ok {
		entry = &pooled{session: p.create(key)}
		p.sessions[key] = entry
	}
	p.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(entry.session)
	return nil
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close archives every session and rejects further use.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	entries := make([]*pooled, 0, len(p.sessions))
	for _, e := range p.sessions {
		entries = append(entries, e)
	}
	p.mu.Unlock()

	var errs []error
	for _, e := range entries {
		e.mu.Lock()
		errs = append(errs, e.session.Close(ctx))
		e.mu.Unlock()
	}
	return errors.Join(errs...)
}
