package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}

func TestRateLimiterRefills(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)

	assert.True(t, rl.allow())
	assert.False(t, rl.allow())

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.allow())
}

func TestRateLimiterSanitizesArguments(t *testing.T) {
	rl := newRateLimiter(0, 0)

	// Falls back to a capacity of one token.
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}
