package enforce

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RatePolicy is a per-actor token bucket: PerMinute tokens refill rate
// with a Burst-sized bucket.
type RatePolicy struct {
	PerMinute int
	Burst     int
}

func (p RatePolicy) perSecond() float64 {
	r := float64(p.PerMinute) / 60.0
	if r <= 0 {
		r = 1
	}
	return r
}

// LimiterStore abstracts the storage behind BUDGET guard buckets, so a
// single-process checker and a fleet sharing Redis use the same interface.
type LimiterStore interface {
	// Allow reports whether actorID may spend cost tokens under policy.
	Allow(ctx context.Context, actorID string, policy RatePolicy, cost int) (bool, error)
}

// MemoryLimiter keeps one token bucket per actor in process memory.
type MemoryLimiter struct {
	mu     sync.Mutex
	actors map[string]*rate.Limiter
}

// NewMemoryLimiter builds an empty in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{actors: make(map[string]*rate.Limiter)}
}

// Allow implements LimiterStore.
func (s *MemoryLimiter) Allow(_ context.Context, actorID string, policy RatePolicy, cost int) (bool, error) {
	s.mu.Lock()
	lim, ok := s.actors[actorID]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(policy.perSecond()), policy.Burst)
		s.actors[actorID] = lim
	}
	s.mu.Unlock()

	return lim.AllowN(time.Now(), cost), nil
}
