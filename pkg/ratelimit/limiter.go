package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces calls at least interval apart. Waiters queue in the order
// they arrive; a waiter holds no lock while sleeping, so unrelated work is
// never blocked by the delay itself.
type Limiter struct {
	mutex    sync.Mutex
	interval time.Duration
	next     time.Time
}

func New(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Wait blocks until the caller's reserved slot arrives or the context is
// canceled. The slot is consumed even if the caller gives up, which keeps
// the spacing guarantee for everyone behind it.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mutex.Lock()
	now := time.Now()
	at := l.next
	if at.Before(now) {
		at = now
	}
	l.next = at.Add(l.interval)
	l.mutex.Unlock()

	delay := time.Until(at)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
