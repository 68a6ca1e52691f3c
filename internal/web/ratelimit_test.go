package web

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func testLimiter(perMinute, burst int) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterPerIP(t *testing.T) {
	rl, _ := testLimiter(60, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// Another client has its own bucket.
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl, now := testLimiter(60, 2)

	for i := range 100 {
		rl.Allow(fmt.Sprintf("10.0.1.%d", i))
	}
	assert.Equal(t, 100, rl.Len())

	// Half the ttl later one client is still active.
	*now = now.Add(rl.ttl / 2)
	rl.Allow("10.0.0.9")

	*now = now.Add(rl.ttl / 2)
	rl.Allow("10.0.0.9")
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiterKeepsRecentlySeenClients(t *testing.T) {
	rl, now := testLimiter(60, 1)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	*now = now.Add(rl.ttl / 2)
	rl.Allow("10.0.0.1")

	// The sweep at the ttl mark only drops clients idle for the full ttl.
	*now = now.Add(rl.ttl / 2)
	rl.Allow("10.0.0.2")
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiterTTLCoversRefill(t *testing.T) {
	// One event per minute with a burst of 5 takes five minutes to refill.
	rl := NewRateLimiter(rate.Every(time.Minute), 5)
	assert.InDelta(t, float64(5*time.Minute), float64(rl.ttl), float64(time.Millisecond))

	assert.Equal(t, minLimiterTTL, NewRateLimiter(rate.Inf, 1).ttl)
}
