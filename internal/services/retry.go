package services

import (
	"context"
	"errors"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/metrics"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sethvargo/go-retry"
)

const defaultRetryBackoff = 100 * time.Millisecond

// withRetry runs fn and retries it exactly once, after backoff, when it fails
// with models.ErrStoreUnavailable. Any other failure is returned immediately.
// A context cancelled during the backoff still reports the store failure.
func withRetry(ctx context.Context, backoff time.Duration, op string, fn func(ctx context.Context) error) error {
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	var (
		attempt int
		lastErr error
	)
	err := retry.Do(ctx, retry.WithMaxRetries(1, retry.NewConstant(backoff)), func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.StoreRetries.Inc()
			logger.Log.Warnw("retrying store call", "op", op, "attempt", attempt)
		}

		lastErr = fn(ctx)
		if errors.Is(lastErr, models.ErrStoreUnavailable) {
			return retry.RetryableError(lastErr)
		}
		return lastErr
	})

	if errors.Is(lastErr, models.ErrStoreUnavailable) &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return lastErr
	}
	return err
}
