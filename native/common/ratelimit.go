package common

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ApproverRateLimiter bounds how often a single approver address may call
// approve_claim or mark_as_spam in-process, independent of the persisted
// per-epoch Quota/Store check. It is the in-memory first line of defense
// against a burst from one approver, grounded in gateway/middleware's
// per-visitor rate.Limiter pattern.
type ApproverRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	r        rate.Limit
	burst    int
	now      func() time.Time
}

// NewApproverRateLimiter constructs a limiter allowing ratePerSecond
// sustained requests per approver with the given burst.
func NewApproverRateLimiter(ratePerSecond float64, burst int) *ApproverRateLimiter {
	return &ApproverRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		r:        rate.Limit(ratePerSecond),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *ApproverRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.visitors[key]
	if !ok {
		lim = rate.NewLimiter(l.r, l.burst)
		l.visitors[key] = lim
	}
	return lim
}

// Allow reports whether the approver identified by key may proceed now.
func (l *ApproverRateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	return l.limiterFor(key).AllowN(l.now(), 1)
}
