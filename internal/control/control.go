// Package control wires the application together and owns its lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/scribe/internal/core/config"
	"github.com/vietddude/scribe/internal/generation"
	"github.com/vietddude/scribe/internal/infra/genai"
	"github.com/vietddude/scribe/internal/infra/genai/credential"
	"github.com/vietddude/scribe/internal/infra/latex"
	"github.com/vietddude/scribe/internal/infra/publish"
	redisclient "github.com/vietddude/scribe/internal/infra/redis"
	"github.com/vietddude/scribe/internal/infra/storage"
	"github.com/vietddude/scribe/internal/infra/storage/memory"
	"github.com/vietddude/scribe/internal/infra/storage/postgres"
	"github.com/vietddude/scribe/internal/server"
)

// Interval and retention for the failed-draft pruner.
const (
	pruneInterval  = time.Hour
	pruneRetention = 24 * time.Hour
)

// Scribe is the main application struct that manages the service lifecycle.
type Scribe struct {
	cfg         *config.AppConfig
	svc         *generation.Service
	apiServer   *server.Server
	db          *postgres.DB
	redisClient *redisclient.Client
	group       *errgroup.Group
	cancel      context.CancelFunc
}

// NewScribe creates a new Scribe instance with all dependencies initialized.
func NewScribe(cfg *config.AppConfig) (*Scribe, error) {
	// 1. Credential configuration store. Without Redis the pool falls back
	// to the process-level default key.
	var store credential.Store
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		store = redisClient
		slog.Info("Using Redis credential store")
	} else {
		slog.Warn("No Redis configured, using process default API key only")
	}

	pool := credential.NewPool(store, cfg.GenAI.DefaultAPIKey)

	genaiOpts := []genai.Option{genai.WithTimeout(cfg.GenAI.RequestTimeout)}
	if cfg.GenAI.BaseURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(cfg.GenAI.BaseURL))
	}
	genaiClient := genai.NewClient(pool, genaiOpts...)

	// 2. Storage
	var drafts storage.DraftRepository
	var records storage.PublishRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		drafts = postgres.NewDraftRepo(db)
		records = postgres.NewPublishRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		drafts = memory.NewDraftRepo(store)
		records = memory.NewPublishRepo(store)
		slog.Warn("Using in-memory storage, drafts will not survive restarts")
	}

	// 3. External collaborators and the service itself
	svc := generation.NewService(
		genaiClient,
		latex.NewClient(cfg.Latex),
		publish.NewClient(cfg.Publish),
		drafts,
		records,
	)

	return &Scribe{
		cfg:         cfg,
		svc:         svc,
		apiServer:   server.New(svc, genaiClient, cfg.Server.Port),
		db:          db,
		redisClient: redisClient,
	}, nil
}

// Start starts the HTTP server and the failed-draft pruner. Non-blocking.
func (s *Scribe) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	group, groupCtx := errgroup.WithContext(runCtx)
	s.group = group

	group.Go(func() error {
		slog.Info("API server listening", "port", s.cfg.Server.Port)
		if err := s.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		s.runPruner(groupCtx)
		return nil
	})

	return nil
}

// runPruner periodically removes failed drafts older than the retention
// window.
func (s *Scribe) runPruner(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.svc.PruneFailedDrafts(ctx, time.Now().Add(-pruneRetention))
			if err != nil {
				slog.Warn("Failed to prune drafts", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("Pruned failed drafts", "count", n)
			}
		}
	}
}

// Stop gracefully shuts the service down.
func (s *Scribe) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.apiServer.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop api server: %w", err)
	}
	if s.group != nil {
		if err := s.group.Wait(); err != nil {
			return err
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
	return nil
}
