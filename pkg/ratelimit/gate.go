// Package ratelimit gates search traffic per identity with a token bucket.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the outcome of a gate check. RetryAfter is only meaningful
// when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Gate tracks one token bucket per identity. Identities are whatever the
// caller uses to partition traffic, typically a user ID or client address.
type Gate struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewGate creates a gate allowing perSecond events with the given burst
// per identity. Non-positive values disable limiting entirely.
func NewGate(perSecond float64, burst int) *Gate {
	g := &Gate{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
	if perSecond <= 0 || burst <= 0 {
		g.limit = rate.Inf
		g.burst = 1
	}
	return g
}

func (g *Gate) limiterFor(identity string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[identity]
	if !ok {
		l = rate.NewLimiter(g.limit, g.burst)
		g.limiters[identity] = l
	}
	return l
}

// Check consumes one token for the identity if available. When the bucket
// is empty the reservation is cancelled and the caller learns how long to
// wait before retrying.
func (g *Gate) Check(identity string) Decision {
	r := g.limiterFor(identity).Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return Decision{Allowed: false, RetryAfter: delay}
	}
	return Decision{Allowed: true}
}

// Forget drops the identity's bucket, resetting its allowance.
func (g *Gate) Forget(identity string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.limiters, identity)
}
