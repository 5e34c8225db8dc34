package replay

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"collectibleAMM/internal/ammerr"
)

// withRetry retries fn on transient failures. Engine validation errors and
// undecodable instructions fail the same way every time and are returned
// immediately.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	op := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ammerr.IsEngine(err) || errors.Is(err, ErrUnknownOp) || errors.Is(err, errDecode) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx))
}
