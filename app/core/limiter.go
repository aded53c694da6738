package core

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiters hands out one token bucket per limit key (operation + client).
type Limiters struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter

	defaultRate  rate.Limit
	defaultBurst int
}

func NewLimiters() *Limiters {
	return &Limiters{
		buckets:      make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(5),
		defaultBurst: 10,
	}
}

func (l *Limiters) Get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	b := rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.buckets[key] = b
	return b
}

func (s *Core) UseLimiter(key string) *rate.Limiter {
	return s.limiters.Get(key)
}
