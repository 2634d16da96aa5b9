package ratelimit

import "time"

// RateLimitConfig bounds how often a key may perform an action. Zero limits
// disable that window.
type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
	RequestsPerDay    int
}

// RateLimiter throttles sensitive commitment operations, most importantly
// emergency cancellations.
type RateLimiter interface {
	Allow(key string, config RateLimitConfig) (bool, error)
	GetRemaining(key string, window time.Duration) (int64, error)
	Reset(key string) error
}
