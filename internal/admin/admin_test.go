package admin

import (
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Errorf("expected correct password to verify")
	}
	if VerifyPassword("wrong password", hash) {
		t.Errorf("expected wrong password to fail")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("anything", "not-a-phc-string") {
		t.Errorf("expected malformed hash to be treated as non-match")
	}
}

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)
	now := time.Now()
	for i := 0; i < 3; i++ {
		if !limiter.Allow(now) {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	if limiter.Allow(now) {
		t.Errorf("4th attempt within window should be denied")
	}
}

func TestRateLimiterSlidesWindow(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	now := time.Now()
	if !limiter.Allow(now) {
		t.Fatalf("first attempt should be allowed")
	}
	if limiter.Allow(now.Add(30 * time.Second)) {
		t.Errorf("second attempt inside window should be denied")
	}
	if !limiter.Allow(now.Add(61 * time.Second)) {
		t.Errorf("attempt after window expiry should be allowed")
	}
}

func TestVerifyWithRateLimitConsumesSlotOnFailedPassword(t *testing.T) {
	hash, _ := HashPassword("secret")
	limiter := NewRateLimiter(1, time.Minute)
	now := time.Now()

	if err := VerifyWithRateLimit(limiter, now, "wrong", hash); err == nil {
		t.Fatalf("expected error for wrong password")
	}
	if err := VerifyWithRateLimit(limiter, now, "secret", hash); err == nil {
		t.Errorf("expected rate limit error on second attempt even with correct password")
	}
}
