package genai

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
	"github.com/vietddude/scribe/internal/infra/genai/credential"
	"github.com/vietddude/scribe/internal/infra/genai/routing"
	"github.com/vietddude/scribe/internal/metrics"
)

// Client is the model invocation layer. It resolves the request tier to a
// concrete model, runs the call through the executor, and retries once
// against the fallback model when the default flash-tier model reports
// quota exhaustion. It never mutates pool state directly; rotation happens
// only inside the executor.
type Client struct {
	pool    *credential.Pool
	exec    *routing.Executor
	baseURL string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the backend endpoint (tests point this at a local
// server).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSleeper injects the backoff sleeper, used by tests to observe waits
// without wall-clock delay.
func WithSleeper(sleep routing.Sleeper) Option {
	return func(c *Client) { c.exec = routing.NewExecutorWithSleeper(c.pool, sleep) }
}

// NewClient creates a client over the given key pool.
func NewClient(pool *credential.Pool, opts ...Option) *Client {
	c := &Client{
		pool:    pool,
		exec:    routing.NewExecutor(pool),
		baseURL: DefaultBaseURL,
		timeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate runs one logical generation call. Callers observe either a
// result or one terminal error; retry, rotation, and the model fallback
// are invisible except through latency.
func (c *Client) Generate(
	ctx context.Context,
	req domain.GenerationRequest,
) (*domain.GenerationResult, error) {
	start := time.Now()
	tier := string(req.Tier)
	model := ModelForTier(req.Tier)

	text, err := c.generate(ctx, model, req)
	if err != nil && model == tierModels[domain.TierFlash] && isQuotaExhaustion(err) {
		metrics.ModelFallbacksTotal.Inc()
		slog.Warn("Flash-tier quota exhausted, retrying on fallback model",
			"model", model, "fallback", fallbackFlashModel, "error", err)
		model = fallbackFlashModel
		text, err = c.generate(ctx, model, req)
	}

	metrics.GenerationLatency.WithLabelValues(tier).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationCallsTotal.WithLabelValues(tier, "error").Inc()
		return nil, err
	}

	metrics.GenerationCallsTotal.WithLabelValues(tier, "success").Inc()
	return &domain.GenerationResult{Text: text, Model: model}, nil
}

func (c *Client) generate(
	ctx context.Context,
	model string,
	req domain.GenerationRequest,
) (string, error) {
	result, err := c.exec.Execute(ctx, func(ctx context.Context, apiKey string) (any, error) {
		sess := NewSession(apiKey, c.baseURL, c.timeout)
		return sess.GenerateContent(ctx, model, req)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// isQuotaExhaustion reports whether the terminal error is a quota-style
// failure (rotatable rate limit that survived every key, or a hard
// quota-zero condition). Only these trigger the fallback model.
func isQuotaExhaustion(err error) bool {
	switch routing.Classify(err) {
	case routing.ActionRotate, routing.ActionHardQuota:
		return true
	default:
		return false
	}
}

// PoolStatus reports the pool state for the status endpoint.
type PoolStatus struct {
	Keys        int `json:"keys"`
	ActiveIndex int `json:"active_index"`
}

// Status reloads the pool and returns its current state.
func (c *Client) Status(ctx context.Context) PoolStatus {
	c.pool.Reload(ctx)
	return PoolStatus{Keys: c.pool.Size(), ActiveIndex: c.pool.ActiveIndex()}
}
