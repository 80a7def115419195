package routing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// recordingSleeper captures requested waits without sleeping.
func recordingSleeper(waits *[]time.Duration) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestCallWithRetry_TransientExhaustsBudget(t *testing.T) {
	var waits []time.Duration
	calls := 0
	invoke := func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("connection reset by peer")
	}

	_, err := CallWithRetry(context.Background(), invoke, 1, recordingSleeper(&waits))
	if err == nil {
		t.Fatal("expected error after exhausted budget")
	}
	if calls != InnerRetryBudget {
		t.Errorf("calls = %d, want %d", calls, InnerRetryBudget)
	}
	if len(waits) != InnerRetryBudget-1 {
		t.Errorf("sleeps = %d, want %d", len(waits), InnerRetryBudget-1)
	}
	for i, w := range waits {
		base := time.Second * time.Duration(1<<uint(i+1))
		if w < base || w >= base+500*time.Millisecond {
			t.Errorf("wait %d = %v, want in [%v, %v)", i, w, base, base+500*time.Millisecond)
		}
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Errorf("terminal error %q does not name the last failure", err)
	}
}

func TestCallWithRetry_SucceedsMidBudget(t *testing.T) {
	var waits []time.Duration
	calls := 0
	invoke := func(ctx context.Context) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("timeout")
		}
		return "ok", nil
	}

	result, err := CallWithRetry(context.Background(), invoke, 1, recordingSleeper(&waits))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %v, want ok", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestCallWithRetry_HardQuotaRaisesImmediately(t *testing.T) {
	var waits []time.Duration
	calls := 0
	invoke := func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("quota exceeded, limit: 0")
	}

	_, err := CallWithRetry(context.Background(), invoke, 3, recordingSleeper(&waits))
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (hard quota never retries)", calls)
	}
	if len(waits) != 0 {
		t.Errorf("sleeps = %d, want 0", len(waits))
	}
}

func TestCallWithRetry_RotationRaisesWhenMoreKeysExist(t *testing.T) {
	calls := 0
	invoke := func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("429 rate limit exceeded")
	}

	var waits []time.Duration
	_, err := CallWithRetry(context.Background(), invoke, 2, recordingSleeper(&waits))
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (rotation must not burn the retry budget)", calls)
	}
}

func TestCallWithRetry_SingleKeyRateLimitBacksOff(t *testing.T) {
	var waits []time.Duration
	calls := 0
	invoke := func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("429 rate limit exceeded")
	}

	_, err := CallWithRetry(context.Background(), invoke, 1, recordingSleeper(&waits))
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != InnerRetryBudget {
		t.Errorf("calls = %d, want %d (waiting is the only option with one key)", calls, InnerRetryBudget)
	}
	for i, w := range waits {
		if w < 8*time.Second || w >= 12*time.Second {
			t.Errorf("wait %d = %v, want in [8s, 12s)", i, w)
		}
	}
}

func TestCallWithRetry_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	invoke := func(ctx context.Context) (any, error) {
		return nil, errors.New("timeout")
	}
	sleep := func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := CallWithRetry(ctx, invoke, 1, sleep)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
