package storage

import (
	"context"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
)

// DraftRepository handles draft persistence
type DraftRepository interface {
	// Save inserts or updates a draft
	Save(ctx context.Context, draft *domain.Draft) error

	// Get retrieves a draft by ID
	Get(ctx context.Context, id string) (*domain.Draft, error)

	// List returns drafts ordered by creation time, newest first
	List(ctx context.Context, limit int) ([]*domain.Draft, error)

	// UpdateStatus updates a draft's lifecycle status
	UpdateStatus(ctx context.Context, id string, status domain.DraftStatus) error

	// PruneFailed deletes failed drafts last touched before the cutoff,
	// returning the number removed
	PruneFailed(ctx context.Context, cutoff time.Time) (int64, error)
}

// PublishRepository handles publish record persistence
type PublishRepository interface {
	// Save inserts a publish record
	Save(ctx context.Context, record *domain.PublishRecord) error

	// GetByDraft retrieves the publish record for a draft, nil if none
	GetByDraft(ctx context.Context, draftID string) (*domain.PublishRecord, error)
}
