package app

import (
	"context"
	"math/rand"
	"time"
)

// Reconnect delays used while a consumer waits for its channel to appear.
const (
	DefaultBackoffInitial = 50 * time.Millisecond
	DefaultBackoffMax     = 2 * time.Second
)

// backoffJitter is the fraction a delay may deviate in either direction.
const backoffJitter = 0.2

// backoff is a doubling, capped delay. It is not safe for concurrent use.
type backoff struct {
	initial, max, current time.Duration
}

func newBackoff(initial, ceiling time.Duration) *backoff {
	if initial <= 0 {
		initial = DefaultBackoffInitial
	}
	return &backoff{initial: initial, max: max(initial, ceiling), current: initial}
}

// Wait blocks for the jittered current delay, then doubles the delay up to
// the cap. It returns ctx.Err() if ctx ends first.
func (b *backoff) Wait(ctx context.Context) error {
	timer := time.NewTimer(b.jittered())
	defer timer.Stop()
	b.current = min(2*b.current, b.max)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (b *backoff) jittered() time.Duration {
	f := 1 + backoffJitter*(2*rand.Float64()-1)
	return time.Duration(float64(b.current) * f)
}

// Reset starts the next retry sequence from the initial delay.
func (b *backoff) Reset() { b.current = b.initial }

// Current is the delay the next Wait is based on.
func (b *backoff) Current() time.Duration { return b.current }
