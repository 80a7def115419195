package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vietddude/scribe/internal/infra/genai/credential"
	"github.com/vietddude/scribe/internal/metrics"
)

// BoundInvoke is the underlying request before key binding. The executor
// constructs a bound session per attempt from the active key.
type BoundInvoke func(ctx context.Context, apiKey string) (any, error)

// Executor runs one logical request across the key pool, handling both
// rotation-level and attempt-level retry. Callers observe either a
// successful result or one terminal error; local recovery is invisible
// except through latency. Attempts are strictly sequential; at most one
// request is in flight per logical call.
type Executor struct {
	pool  *credential.Pool
	sleep Sleeper
}

// NewExecutor creates an executor over the given pool.
func NewExecutor(pool *credential.Pool) *Executor {
	return &Executor{pool: pool, sleep: SleepContext}
}

// NewExecutorWithSleeper creates an executor with an injected sleeper.
// Tests use this to observe backoff waits without wall-clock delay.
func NewExecutorWithSleeper(pool *credential.Pool, sleep Sleeper) *Executor {
	return &Executor{pool: pool, sleep: sleep}
}

// Execute reloads the pool and runs invoke under the retry/rotation state
// machine. The pool is reloaded at the start of every logical call so
// externally added or removed keys take effect without restart.
func (e *Executor) Execute(ctx context.Context, invoke BoundInvoke) (any, error) {
	e.pool.Reload(ctx)

	maxAttempts := e.pool.Size()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		key, err := e.pool.Current()
		if err != nil {
			// Configuration error: no network call is ever issued.
			return nil, err
		}

		result, err := CallWithRetry(ctx, func(ctx context.Context) (any, error) {
			return invoke(ctx, key)
		}, e.pool.Size(), e.sleep)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if Classify(err) == ActionRotate && e.pool.Size() > 1 {
			if attempt == maxAttempts {
				break
			}
			e.pool.Advance()
			metrics.KeyRotationsTotal.Inc()
			slog.Warn("Rotating to next API key", "attempt", attempt, "error", err)

			if err := e.sleep(ctx, RotationCooldown); err != nil {
				return nil, err
			}
			continue
		}

		// Single key, or a non-rotation failure that escaped the inner
		// loop: no further keys can help.
		return nil, err
	}

	return nil, fmt.Errorf(
		"all %d API keys %s: last error: %w",
		maxAttempts, exhaustionReason(lastErr), lastErr,
	)
}

// exhaustionReason labels the terminal error so an operator can tell a
// suspended key set from a transient backend outage.
func exhaustionReason(err error) string {
	if err == nil {
		return "exhausted"
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "suspended"):
		return "suspended"
	case strings.Contains(s, "quota"):
		return "quota-exhausted"
	default:
		return "exhausted"
	}
}
