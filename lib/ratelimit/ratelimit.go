package ratelimit

import "sync"

// Limiter is a fixed-window request counter per identity. A zero limit
// disables limiting entirely.
type Limiter struct {
	mutex       sync.Mutex
	limit       int
	windowSecs  int64
	windowStart map[string]int64
	counts      map[string]int
}

func NewLimiter(limit int, windowSecs int64) *Limiter {
	return &Limiter{
		limit:       limit,
		windowSecs:  windowSecs,
		windowStart: make(map[string]int64),
		counts:      make(map[string]int),
	}
}

// Allow records one request for identity at time now and reports whether it
// fits inside the current window.
func (l *Limiter) Allow(identity string, now int64) bool {
	if l.limit <= 0 {
		return true
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	start, ok := l.windowStart[identity]
	if !ok || now-start >= l.windowSecs {
		l.windowStart[identity] = now
		l.counts[identity] = 0
	}

	if l.counts[identity] >= l.limit {
		return false
	}

	l.counts[identity]++
	return true
}
