package audit

import (
	"context"
	"sync"
	"time"
)

// Breaker routes events to a primary sink until it fails threshold times in
// a row. While open, events go to the fallback sink. After cooldown one event
// is tried against the primary again.
type Breaker struct {
	primary  Sink
	fallback Sink

	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
	now       func() time.Time
}

type BreakerOption func(*Breaker)

func WithThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

func WithCooldown(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func withClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		b.now = now
	}
}

func NewBreaker(primary, fallback Sink, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		primary:   primary,
		fallback:  fallback,
		threshold: 5,
		cooldown:  time.Minute,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Emit(ctx context.Context, event Event) error {
	if !b.allow() {
		return b.fallback.Emit(ctx, event)
	}
	if err := b.primary.Emit(ctx, event); err != nil {
		b.recordFailure()
		if fbErr := b.fallback.Emit(ctx, event); fbErr != nil {
			return fbErr
		}
		return err
	}
	b.recordSuccess()
	return nil
}

// IsOpen reports whether events are currently diverted to the fallback.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.threshold && b.now().Before(b.openUntil)
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold {
		return true
	}
	return !b.now().Before(b.openUntil)
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}
