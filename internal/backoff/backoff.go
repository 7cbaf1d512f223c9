package backoff

import (
	"context"
	"time"
)

// Policy retries an operation with exponential backoff. The delay before
// attempt n is BaseDelay << n, so the defaults give 1s, 2s, 4s, ...
type Policy struct {
	// MaxAttempts is the total number of tries including the first one.
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration
	// Retryable classifies errors. A nil predicate retries everything.
	// Returning false makes the error terminal immediately.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, returns a terminal error, exhausts
// MaxAttempts, or ctx is canceled. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-time.After(base << uint(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}
