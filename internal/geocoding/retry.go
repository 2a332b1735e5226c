package geocoding

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the number of provider attempts for one address and
// the exponential pauses between them.
type RetryPolicy struct {
	MaxAttempts    int           // total attempts, including the first one
	InitialBackoff time.Duration // pause after the first failed attempt
	Multiplier     float64       // growth factor applied after every retried attempt
}

// DefaultRetryPolicy waits 400ms, 800ms, 1.6s and 3.2s between five attempts.
func DefaultRetryPolicy() RetryPolicy {
	const (
		maxAttempts    = 5
		initialBackoff = 400 * time.Millisecond
		multiplier     = 2
	)

	return RetryPolicy{MaxAttempts: maxAttempts, InitialBackoff: initialBackoff, Multiplier: multiplier}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialBackoff < 0 {
		p.InitialBackoff = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	return p
}

// schedule returns a fresh pause sequence for one address. NextBackOff yields
// MaxAttempts-1 pauses without jitter and then backoff.Stop.
func (p RetryPolicy) schedule() backoff.BackOff {
	exp := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialBackoff,
		RandomizationFactor: 0,
		Multiplier:          p.Multiplier,
		MaxInterval:         time.Duration(math.MaxInt64),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}

	b := backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)) //nolint:gosec // MaxAttempts is at least 1 after normalized
	b.Reset()

	return b
}

// SleepFunc pauses between attempts. It returns early with the context error when ctx ends.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
