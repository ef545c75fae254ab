// File: internal/ratelimit/ratelimit_test.go
package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxAttempts:   3,
		CleanupPeriod: time.Hour,
		BanDuration:   time.Minute,
	}
}

func TestAllowWithinLimit(t *testing.T) {
	rl := NewMemoryRateLimiter(testConfig())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := rl.Allow("1.2.3.4")
		assert.True(t, allowed, "attempt %d", i+1)
		assert.Equal(t, 2-i, info.Remaining)
	}
}

func TestBansAfterLimit(t *testing.T) {
	rl := NewMemoryRateLimiter(testConfig())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.Allow("1.2.3.4")
	}

	allowed, info := rl.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.True(t, info.Banned)
	assert.Greater(t, info.RetryAfter, time.Duration(0))

	// Other addresses are unaffected.
	allowed, _ = rl.Allow("5.6.7.8")
	assert.True(t, allowed)
}

func TestRecordSuccessResets(t *testing.T) {
	rl := NewMemoryRateLimiter(testConfig())
	defer rl.Stop()

	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")
	rl.RecordSuccess("1.2.3.4")

	_, info := rl.Allow("1.2.3.4")
	assert.Equal(t, 2, info.Remaining)
}

func TestGetClientIP(t *testing.T) {
	r, _ := http.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1", GetClientIP(r))

	r.Header.Set("X-Real-IP", "3.3.3.3")
	assert.Equal(t, "3.3.3.3", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "1.1.1.1", GetClientIP(r))
}
