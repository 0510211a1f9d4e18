// Package util provides small helpers shared across adapters.
package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// MaxBackoff caps the delay between retry attempts.
const MaxBackoff = 30 * time.Second

// CalculateBackoff returns an exponential backoff duration with jitter
// for the given attempt number (0-based). The base delay doubles each
// attempt, is capped at MaxBackoff, and carries +/-25% random jitter so
// concurrent clients spread out.
func CalculateBackoff(attempt int) time.Duration {
	base := time.Second * time.Duration(1<<uint(attempt))
	if base > MaxBackoff {
		base = MaxBackoff
	}

	jitter := 0.75 + rand.Float64()*0.5
	return time.Duration(float64(base) * jitter)
}

// SleepWithContext waits for the duration or until the context is
// cancelled, whichever comes first. Returns the context error on
// cancellation.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
