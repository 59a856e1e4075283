// Package auth validates the control token and throttles brute-force attempts.
package auth

import (
	"context"
	"encoding/base64"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	MaxAttempts     = 5
	LockoutDuration = 5 * time.Minute
	CleanupInterval = 5 * time.Minute
)

type failInfo struct {
	count       int
	lockedUntil time.Time
}

// Manager checks control tokens against a bcrypt hash and locks out
// clients after repeated failures.
type Manager struct {
	hashB64  string
	failures map[string]failInfo
	mu       sync.RWMutex
}

// NewManager creates an auth manager with a cleanup goroutine bound to ctx.
// hashB64 is the base64-encoded bcrypt hash; empty disables token actions.
func NewManager(ctx context.Context, hashB64 string) *Manager {
	m := &Manager{
		hashB64:  hashB64,
		failures: make(map[string]failInfo),
	}
	go m.cleanupLoop(ctx)
	log.Printf("[AUTH] Control token configured: %v", m.Enabled())
	return m
}

// Enabled returns true if a token hash was configured.
func (m *Manager) Enabled() bool {
	return m.hashB64 != ""
}

// ValidateToken decodes the base64 hash and compares with bcrypt.
// Without a configured hash every token is rejected.
func (m *Manager) ValidateToken(token string) bool {
	if !m.Enabled() || token == "" {
		return false
	}
	hashBytes, err := base64.StdEncoding.DecodeString(m.hashB64)
	if err != nil {
		log.Printf("[AUTH] ❌ Failed to decode token hash from base64: %v", err)
		return false
	}
	return bcrypt.CompareHashAndPassword(hashBytes, []byte(token)) == nil
}

// IsLockedOut returns true if the client has exceeded MaxAttempts.
func (m *Manager) IsLockedOut(client string) bool {
	m.mu.RLock()
	info, exists := m.failures[client]
	m.mu.RUnlock()
	if !exists {
		return false
	}
	return info.count >= MaxAttempts && time.Now().Before(info.lockedUntil)
}

// RecordFailure increments the failure counter for a client.
func (m *Manager) RecordFailure(client string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := m.failures[client]
	info.count++
	if info.count >= MaxAttempts {
		info.lockedUntil = time.Now().Add(LockoutDuration)
		log.Printf("[AUDIT] Client %s locked out for %v after %d failed attempts",
			client, LockoutDuration, info.count)
	}
	m.failures[client] = info
}

// ClearFailures resets the counter on success.
func (m *Manager) ClearFailures(client string) {
	m.mu.Lock()
	delete(m.failures, client)
	m.mu.Unlock()
}

func (m *Manager) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for k, v := range m.failures {
				if v.count >= MaxAttempts && now.After(v.lockedUntil) {
					delete(m.failures, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
