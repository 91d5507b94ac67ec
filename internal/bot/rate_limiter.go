package bot

import (
	"sync"
	"time"
)

const (
	defaultRateLimitMax    = 5
	defaultRateLimitWindow = 60 * time.Second
)

// RateLimiter is a per-user sliding window.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = defaultRateLimitMax
	}
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

func (r *RateLimiter) Allow(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	pruned := r.pruneLocked(userID, now)

	if len(pruned) >= r.max {
		return false
	}

	r.requests[userID] = append(pruned, now)
	return true
}

// RetryAfter reports how long userID must wait before the next command is
// allowed. Zero means now.
func (r *RateLimiter) RetryAfter(userID string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	pruned := r.pruneLocked(userID, now)
	if len(pruned) < r.max {
		return 0
	}
	return pruned[0].Add(r.window).Sub(now)
}

// pruneLocked drops timestamps outside the window. Users with none left are
// removed from the map.
func (r *RateLimiter) pruneLocked(userID string, now time.Time) []time.Time {
	cutoff := now.Add(-r.window)

	timestamps := r.requests[userID]
	pruned := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}
	if len(pruned) == 0 {
		delete(r.requests, userID)
		return nil
	}
	r.requests[userID] = pruned
	return pruned
}
