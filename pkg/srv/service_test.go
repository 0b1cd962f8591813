package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeService struct {
	name     string
	rec      *recorder
	startErr error
}

func (f *fakeService) Start(ctx context.Context) error {
	f.rec.add("start " + f.name)
	return f.startErr
}

func (f *fakeService) Shutdown(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.rec.add("shutdown " + f.name)
	return nil
}

func TestRun_ShutdownOrder(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())

	services := []Service{
		&fakeService{name: "repl", rec: rec},
		NewCleanup(func() error { rec.add("close db"); return nil }),
	}

	done := make(chan struct{})
	go func() {
		Run(ctx, cancel, services...)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(rec.list()) >= 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	calls := rec.list()
	assert.Equal(t, []string{"shutdown repl", "close db"}, calls[len(calls)-2:])
}

func TestStartServices_FailureStops(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartServices(ctx, cancel, []Service{&fakeService{name: "bot", rec: rec, startErr: errors.New("bad token")}})

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("failed start did not cancel the context")
	}
}

func TestNewCleanup_Nil(t *testing.T) {
	s := NewCleanup(nil)
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Shutdown(context.Background()))
}
