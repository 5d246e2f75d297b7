package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls bounded retry with exponential backoff. The zero value is
// not usable; start from DefaultPolicy and override per call site.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2.0,
		MaxDelay:    5 * time.Second,
	}
}

// Do runs fn until it succeeds, the attempt budget is spent, or ctx is
// cancelled. The delay before attempt n is BaseDelay*Multiplier^(n-1),
// capped at MaxDelay.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return fmt.Errorf("retry budget exhausted after %d attempts: %w", p.MaxAttempts, err)
}
