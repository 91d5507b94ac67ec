package bot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	for i := range 3 {
		require.True(t, rl.Allow("user-1"), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("user-1"), "request beyond limit should be denied")
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, defaultRateLimitMax, rl.max)
	assert.Equal(t, defaultRateLimitWindow, rl.window)
}

func TestRateLimiterIsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	rl.Allow("user-1")
	rl.Allow("user-1")
	assert.False(t, rl.Allow("user-1"))
	assert.True(t, rl.Allow("user-2"), "different user should not be affected")
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	require.True(t, rl.Allow("user-1"))
	clock = clock.Add(30 * time.Second)
	require.True(t, rl.Allow("user-1"))
	require.False(t, rl.Allow("user-1"))

	assert.Equal(t, 30*time.Second, rl.RetryAfter("user-1"))

	clock = clock.Add(31 * time.Second)
	assert.Zero(t, rl.RetryAfter("user-1"))
	assert.True(t, rl.Allow("user-1"), "first request has left the window")
}

func TestRateLimiterForgetsIdleUsers(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	clock := time.Now()
	rl.now = func() time.Time { return clock }

	rl.Allow("user-1")
	clock = clock.Add(2 * time.Minute)
	assert.Zero(t, rl.RetryAfter("user-1"))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.requests, "user-1")
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	const max = 5
	rl := NewRateLimiter(max, time.Minute)
	var wg sync.WaitGroup
	allowed := make([]int, 10)

	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			for range max + 2 {
				if rl.Allow(userID) {
					allowed[i]++
				}
			}
		}()
	}
	wg.Wait()

	for i, count := range allowed {
		assert.Equal(t, max, count, "user-%d should have exactly %d allowed requests", i, max)
	}
}
