package api

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_CleanupEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(10, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiterFor("10.0.0.1")
	now = now.Add(90 * time.Minute)
	rl.limiterFor("10.0.0.2")
	assert.Equal(t, 2, rl.clientCount())

	now = now.Add(time.Hour + time.Minute)
	rl.cleanup()
	assert.Equal(t, 1, rl.clientCount())

	now = now.Add(2 * time.Hour)
	rl.cleanup()
	assert.Zero(t, rl.clientCount())
}

func TestRateLimiter_SeparateBucketsPerClient(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer rl.Stop()

	assert.True(t, rl.limiterFor("a").Allow())
	assert.False(t, rl.limiterFor("a").Allow())
	assert.True(t, rl.limiterFor("b").Allow())
}
