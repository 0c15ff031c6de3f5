package http

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per user. Buckets idle long enough to
// have refilled completely are dropped, since a fresh bucket behaves the
// same.
type Limiter struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	buckets   map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

type LimiterOption func(*Limiter)

func WithLimiterClock(c clockwork.Clock) LimiterOption {
	return func(l *Limiter) { l.clock = c }
}

// NewLimiter allows perMinute submissions per user with the given burst.
func NewLimiter(perMinute, burst int, opts ...LimiterOption) *Limiter {
	interval := time.Minute / time.Duration(perMinute)
	l := &Limiter{
		clock:   clockwork.NewRealClock(),
		every:   rate.Every(interval),
		burst:   burst,
		idle:    max(time.Duration(burst)*interval, time.Minute),
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.clock.Now()
	return l
}

func (l *Limiter) Allow(uid string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.sweep(now)

	b, ok := l.buckets[uid]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.every, l.burst)}
		l.buckets[uid] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Len reports how many buckets are held.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	for uid, b := range l.buckets {
		if now.Sub(b.seen) >= l.idle {
			delete(l.buckets, uid)
		}
	}
	l.lastSweep = now
}
