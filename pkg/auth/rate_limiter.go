package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// KeyedLimiter keeps one token bucket per key. Buckets idle for longer than
// idleTTL are dropped by Sweep.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows requestsPerMinute per key with bursts up to burst
func NewKeyedLimiter(requestsPerMinute, burst int) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(requestsPerMinute) / 60),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow checks if a request is allowed
func (l *KeyedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1), nil
}

// Reset resets the rate limit for a key
func (l *KeyedLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

// Sweep drops buckets that have not been used recently and returns how many went
func (l *KeyedLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every interval until ctx is done
func (l *KeyedLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// PrefixedLimiter namespaces keys so one limiter can back several policies
type PrefixedLimiter struct {
	prefix  string
	limiter RateLimiter
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(limiter RateLimiter) *PrefixedLimiter {
	return &PrefixedLimiter{prefix: "ip:", limiter: limiter}
}

// NewUserRateLimiter creates a new user-based rate limiter
func NewUserRateLimiter(limiter RateLimiter) *PrefixedLimiter {
	return &PrefixedLimiter{prefix: "user:", limiter: limiter}
}

// NewAgentRateLimiter creates a limiter keyed by agent project
func NewAgentRateLimiter(limiter RateLimiter) *PrefixedLimiter {
	return &PrefixedLimiter{prefix: "agent:", limiter: limiter}
}

// Allow checks if a request for key is allowed
func (l *PrefixedLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.limiter.Allow(ctx, l.prefix+key)
}

// Reset resets the rate limit for a key
func (l *PrefixedLimiter) Reset(ctx context.Context, key string) error {
	return l.limiter.Reset(ctx, l.prefix+key)
}
