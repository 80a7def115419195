package routing

import (
	"context"
	"math/rand"
	"time"
)

const (
	// InnerRetryBudget is the number of attempts per key per logical request.
	InnerRetryBudget = 5

	// RotationCooldown is the fixed wait after advancing to the next key,
	// to avoid hammering the same backend rate window.
	RotationCooldown = 10 * time.Second

	transientBase   = 1 * time.Second
	transientJitter = 500 * time.Millisecond

	singleKeyWait   = 8 * time.Second
	singleKeyJitter = 4 * time.Second
)

// TransientBackoff returns the wait before retrying a transient failure:
// 2^attempt seconds plus jitter in [0, 500ms), attempt counted from 1.
func TransientBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := transientBase * time.Duration(1<<uint(attempt))
	return wait + time.Duration(rand.Int63n(int64(transientJitter)))
}

// SingleKeyBackoff returns the wait before retrying a rate-limited call
// when only one key exists and rotation is a no-op: 8s plus jitter in
// [0, 4s). Waiting out the rate window is the only option.
func SingleKeyBackoff() time.Duration {
	return singleKeyWait + time.Duration(rand.Int63n(int64(singleKeyJitter)))
}

// Sleeper suspends between attempts. Tests inject a recording
// implementation; the default honors context cancellation.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext waits for d or until ctx is cancelled.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
