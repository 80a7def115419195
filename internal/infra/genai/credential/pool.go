package credential

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/vietddude/scribe/internal/core/domain"
)

// Pool holds an ordered set of API keys and tracks which one is active.
// Insertion order is priority order for initial selection. The pool is
// safe for concurrent use; attempts within one logical call are strictly
// sequential, but the embedding service may run logical calls concurrently.
type Pool struct {
	mu sync.Mutex

	store      Store
	defaultKey string // process-level fallback, lowest precedence

	keys   []string
	active int
	seeded bool // initial index randomized exactly once per pool
}

// NewPool creates a pool backed by the given configuration store.
// store may be nil, in which case only defaultKey is available.
func NewPool(store Store, defaultKey string) *Pool {
	return &Pool{store: store, defaultKey: defaultKey}
}

// Reload re-reads keys from the configuration store. Precedence:
// explicit key list > legacy single key > process default. Reload never
// fails: store errors are logged and the remaining precedence levels
// still apply, and an empty result is represented as an empty pool,
// surfaced only when a caller requests the active key.
//
// The active index is randomized once per pool lifetime on the first
// non-empty load (to spread load across parallel sessions sharing the
// same configuration) and thereafter only clamped back into bounds when
// the pool shrinks below it.
func (p *Pool) Reload(ctx context.Context) {
	keys := p.resolve(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.keys = keys

	if len(p.keys) == 0 {
		p.active = 0
		return
	}

	if !p.seeded {
		p.active = rand.Intn(len(p.keys))
		p.seeded = true
		return
	}

	if p.active >= len(p.keys) {
		p.active %= len(p.keys)
	}
}

// Current returns the active key. An empty pool is a terminal
// configuration error, never retried.
func (p *Pool) Current() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", domain.ErrNoCredentials
	}
	return p.keys[p.active], nil
}

// Advance moves the active index to the next key. It reports whether an
// advance was possible; rotation is meaningless with fewer than two keys.
func (p *Pool) Advance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) < 2 {
		return false
	}
	p.active = (p.active + 1) % len(p.keys)
	return true
}

// Size returns the number of keys currently loaded.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// ActiveIndex returns the current active index. Exposed for status
// reporting; 0 for an empty pool.
func (p *Pool) ActiveIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Pool) resolve(ctx context.Context) []string {
	if p.store != nil {
		keys, err := p.store.KeyList(ctx)
		if err != nil {
			slog.Warn("Failed to read key list from store", "error", err)
		}
		if len(keys) > 0 {
			return keys
		}

		legacy, err := p.store.LegacyKey(ctx)
		if err != nil {
			slog.Warn("Failed to read legacy key from store", "error", err)
		}
		if legacy != "" {
			return []string{legacy}
		}
	}

	if p.defaultKey != "" {
		return []string{p.defaultKey}
	}
	return nil
}
