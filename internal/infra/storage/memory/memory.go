package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
)

// MemoryStorage backs the repositories when no database is configured.
type MemoryStorage struct {
	drafts  map[string]*domain.Draft
	records map[string]*domain.PublishRecord // keyed by draft ID
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		drafts:  make(map[string]*domain.Draft),
		records: make(map[string]*domain.PublishRecord),
	}
}

// -----------------------------------------------------------------------------
// Draft Repository
// -----------------------------------------------------------------------------

type DraftRepo struct {
	store *MemoryStorage
}

func NewDraftRepo(store *MemoryStorage) *DraftRepo {
	return &DraftRepo{store: store}
}

func (r *DraftRepo) Save(ctx context.Context, draft *domain.Draft) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *draft
	r.store.drafts[draft.ID] = &cp
	return nil
}

func (r *DraftRepo) Get(ctx context.Context, id string) (*domain.Draft, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	draft, ok := r.store.drafts[id]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	cp := *draft
	return &cp, nil
}

func (r *DraftRepo) List(ctx context.Context, limit int) ([]*domain.Draft, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	drafts := make([]*domain.Draft, 0, len(r.store.drafts))
	for _, d := range r.store.drafts {
		cp := *d
		drafts = append(drafts, &cp)
	}
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
	})
	if limit > 0 && len(drafts) > limit {
		drafts = drafts[:limit]
	}
	return drafts, nil
}

func (r *DraftRepo) UpdateStatus(ctx context.Context, id string, status domain.DraftStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	draft, ok := r.store.drafts[id]
	if !ok {
		return domain.ErrDraftNotFound
	}
	draft.Status = status
	draft.UpdatedAt = time.Now()
	return nil
}

func (r *DraftRepo) PruneFailed(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, d := range r.store.drafts {
		if d.Status == domain.DraftStatusFailed && d.UpdatedAt.Before(cutoff) {
			delete(r.store.drafts, id)
			removed++
		}
	}
	return removed, nil
}

// -----------------------------------------------------------------------------
// Publish Repository
// -----------------------------------------------------------------------------

type PublishRepo struct {
	store *MemoryStorage
}

func NewPublishRepo(store *MemoryStorage) *PublishRepo {
	return &PublishRepo{store: store}
}

func (r *PublishRepo) Save(ctx context.Context, record *domain.PublishRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *record
	r.store.records[record.DraftID] = &cp
	return nil
}

func (r *PublishRepo) GetByDraft(ctx context.Context, draftID string) (*domain.PublishRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	record, ok := r.store.records[draftID]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}
