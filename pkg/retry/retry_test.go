package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	counter := 0
	err := NewRetrier(fastConfig(3)).Do(context.Background(), func() error {
		counter++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, counter)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	counter := 0
	err := NewRetrier(fastConfig(3)).Do(context.Background(), func() error {
		counter++
		if counter < 2 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, counter)
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	expectedErr := errors.New("permanent error")
	counter := 0
	err := NewRetrier(fastConfig(2)).Do(context.Background(), func() error {
		counter++
		return expectedErr
	})

	require.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, counter, "initial try + 2 retries")
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	cause := errors.New("HTTP 404")
	counter := 0
	err := NewRetrier(fastConfig(5)).Do(context.Background(), func() error {
		counter++
		return Permanent(cause)
	})

	require.Error(t, err)
	assert.Same(t, cause, err)
	assert.Equal(t, 1, counter)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(3)
	cfg.InitialDelay = 50 * time.Millisecond
	cfg.MaxDelay = time.Second

	err := NewRetrier(cfg).Do(ctx, func() error {
		cancel()
		return errors.New("operation error after cancel")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetry_BackoffAndJitter(t *testing.T) {
	config := &Config{
		MaxRetries:    2,
		BackoffFactor: 2.0,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		Jitter:        50 * time.Millisecond,
	}

	start := time.Now()
	counter := 0
	_ = NewRetrier(config).Do(context.Background(), func() error {
		counter++
		return errors.New("error")
	})
	elapsed := time.Since(start)

	// two sleeps: 100ms+j1 and 200ms+j2
	minExpected := 300 * time.Millisecond
	maxExpected := 400*time.Millisecond + 100*time.Millisecond
	assert.GreaterOrEqual(t, elapsed, minExpected)
	assert.LessOrEqual(t, elapsed, maxExpected)
	assert.Equal(t, 3, counter)
}
