package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts with a token bucket per
// (username, ip) pair. Idle buckets are dropped after a TTL so the map does
// not grow without bound.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*loginBucket

	perMinute rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type loginBucket struct {
	lim *rate.Limiter
	ts  time.Time
}

// NewLoginLimiter allows burst immediate attempts per key, refilling at
// perMinute attempts per minute.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &LoginLimiter{
		buckets:   make(map[string]*loginBucket),
		perMinute: rate.Limit(float64(perMinute) / 60.0),
		burst:     burst,
		ttl:       15 * time.Minute,
		now:       time.Now,
	}
}

// Allow reports whether another attempt for username from ip may proceed.
func (l *LoginLimiter) Allow(username, ip string) bool {
	key := username + "\x00" + ip

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &loginBucket{lim: rate.NewLimiter(l.perMinute, l.burst)}
		l.buckets[key] = b
	}
	b.ts = now
	return b.lim.Allow()
}

// sweepLocked drops buckets idle past the TTL, at most once a minute.
func (l *LoginLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.ts) > l.ttl {
			delete(l.buckets, k)
		}
	}
}
