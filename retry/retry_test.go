package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	p := Policy{Delay: 4 * time.Second, MaxDelay: 20 * time.Second}
	assert.Equal(t, time.Duration(0), p.Backoff(0))
	assert.Equal(t, 4*time.Second, p.Backoff(1))
	assert.Equal(t, 8*time.Second, p.Backoff(2))
	assert.Equal(t, 16*time.Second, p.Backoff(3))
	assert.Equal(t, 20*time.Second, p.Backoff(4))
	assert.Equal(t, 20*time.Second, p.Backoff(30))
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	var waits []time.Duration
	p := Policy{Attempts: 3, Delay: time.Second}
	p.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("unreachable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestDoExhausts(t *testing.T) {
	sentinel := errors.New("refused")
	var retried []int
	p := Policy{Attempts: 2, OnRetry: func(n int, _ time.Duration, _ error) { retried = append(retried, n) }}
	p.sleep = func(context.Context, time.Duration) error { return nil }

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{1}, retried)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{Attempts: 5, Delay: time.Hour}
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("down")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
