package cache

import (
	"context"
	"sync"
	"time"
)

type rateWindow struct {
	count   int64
	expires time.Time
}

// MemoryRateLimiter - fallback без Redis с той же семантикой фиксированного окна
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]rateWindow
	now     func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string]rateWindow),
		now:     time.Now,
	}
}

func (l *MemoryRateLimiter) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.expires) {
		w = rateWindow{expires: now.Add(window)}
		l.evictExpired(now)
	}

	w.count++
	l.windows[key] = w

	return w.count, nil
}

// evictExpired вызывается только при открытии нового окна
func (l *MemoryRateLimiter) evictExpired(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.expires) {
			delete(l.windows, key)
		}
	}
}
