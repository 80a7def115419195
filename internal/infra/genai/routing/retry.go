package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/scribe/internal/metrics"
)

// Invoke is the underlying request, already bound to a key. The executor
// is agnostic to its payload.
type Invoke func(ctx context.Context) (any, error)

// CallWithRetry absorbs transient failures against a single key without
// burning a rotation slot. Budget is InnerRetryBudget attempts.
//
// Per-failure handling:
//   - ActionHardQuota and ActionFatal raise immediately.
//   - ActionRotate raises immediately when more keys exist, so the outer
//     loop rotates instead of wasting retries on a doomed key. With a
//     single key it retries after the long rate-limit backoff.
//   - ActionRetry waits out the exponential backoff and tries again.
//
// An exhausted budget returns an error wrapping the last failure, which
// the outer loop classifies again to decide between rotation and
// propagation.
func CallWithRetry(ctx context.Context, invoke Invoke, poolSize int, sleep Sleeper) (any, error) {
	var lastErr error

	for attempt := 1; attempt <= InnerRetryBudget; attempt++ {
		result, err := invoke(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var wait time.Duration
		switch Classify(err) {
		case ActionHardQuota, ActionFatal:
			return nil, err
		case ActionRotate:
			if poolSize > 1 {
				return nil, err
			}
			metrics.RetriesTotal.WithLabelValues("rate_limited").Inc()
			wait = SingleKeyBackoff()
		case ActionRetry:
			metrics.RetriesTotal.WithLabelValues("transient").Inc()
			wait = TransientBackoff(attempt)
		}

		if attempt == InnerRetryBudget {
			break
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", InnerRetryBudget, lastErr)
}
