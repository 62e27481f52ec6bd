// Package admin implements the opaque admin-password verification gate,
// its sliding-window rate limiter, and the privilege check mutating
// commands require, per spec.md §4.9.
package admin

import (
	"sync"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/emosenkis/family-policy/internal/apperr"
)

// HashPassword produces a PHC-string Argon2id hash suitable for storage in
// AdminConfig.PasswordHash.
func HashPassword(plaintext string) (string, error) {
	return argon2id.CreateHash(plaintext, argon2id.DefaultParams)
}

// VerifyPassword reports whether plaintext matches the stored PHC-string
// hash. Any malformed hash is treated as a non-match rather than an error,
// matching the spec's "opaque verification" contract.
func VerifyPassword(plaintext, storedHash string) bool {
	match, err := argon2id.ComparePasswordAndHash(plaintext, storedHash)
	if err != nil {
		return false
	}
	return match
}

// RateLimiter is a sliding-window limiter over admin-password attempts,
// default 3 attempts per 60 seconds per the spec.
type RateLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	attempts []time.Time
}

// NewRateLimiter builds a limiter allowing max attempts per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = 3
	}
	if window <= 0 {
		window = 60 * time.Second
	}
	return &RateLimiter{max: max, window: window}
}

// Allow reports whether a new attempt at now is within the limit, recording
// it if so.
func (r *RateLimiter) Allow(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window)
	kept := r.attempts[:0]
	for _, t := range r.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.attempts = kept

	if len(r.attempts) >= r.max {
		return false
	}
	r.attempts = append(r.attempts, now)
	return true
}

// VerifyWithRateLimit combines the rate limiter and password check,
// returning a KindAuthFailed apperr.Error for both an exhausted window and
// a wrong password so callers need only branch on error presence.
func VerifyWithRateLimit(limiter *RateLimiter, now time.Time, plaintext, storedHash string) error {
	if !limiter.Allow(now) {
		return apperr.New(apperr.KindAuthFailed, "too many admin password attempts", nil)
	}
	if !VerifyPassword(plaintext, storedHash) {
		return apperr.New(apperr.KindAuthFailed, "invalid admin password", nil)
	}
	return nil
}
