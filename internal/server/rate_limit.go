package server

import (
	"sync"
	"time"
)

// RateLimiter restricts how frequently a single client
// can send messages via WebSocket.
type RateLimiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	maxPerMin int
}

// NewRateLimiter creates a limiter allowing maxPerMinute messages per client.
func NewRateLimiter(maxPerMinute int) *RateLimiter {
	return &RateLimiter{
		attempts:  make(map[string][]time.Time),
		maxPerMin: maxPerMinute,
	}
}

// Allow returns true if the client has not exceeded the rate limit.
func (rl *RateLimiter) Allow(clientAddr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	recent := make([]time.Time, 0, rl.maxPerMin)
	for _, t := range rl.attempts[clientAddr] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.maxPerMin {
		return false
	}

	rl.attempts[clientAddr] = append(recent, now)
	return true
}

// Forget drops the history of a disconnected client.
func (rl *RateLimiter) Forget(clientAddr string) {
	rl.mu.Lock()
	delete(rl.attempts, clientAddr)
	rl.mu.Unlock()
}
