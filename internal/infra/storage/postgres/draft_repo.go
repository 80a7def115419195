package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
)

// DraftRepo implements storage.DraftRepository using PostgreSQL.
type DraftRepo struct {
	db *DB
}

// NewDraftRepo creates a new PostgreSQL draft repository.
func NewDraftRepo(db *DB) *DraftRepo {
	return &DraftRepo{db: db}
}

type draftRow struct {
	ID        string    `db:"id"`
	Topic     string    `db:"topic"`
	Tier      string    `db:"tier"`
	Model     string    `db:"model"`
	Body      string    `db:"body"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r draftRow) toDomain() *domain.Draft {
	return &domain.Draft{
		ID:        r.ID,
		Topic:     r.Topic,
		Tier:      domain.ModelTier(r.Tier),
		Model:     r.Model,
		Body:      r.Body,
		Status:    domain.DraftStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Save inserts or updates a draft.
func (r *DraftRepo) Save(ctx context.Context, draft *domain.Draft) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (id, topic, tier, model, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE
		SET topic = $2, tier = $3, model = $4, body = $5, status = $6, updated_at = now()`,
		draft.ID, draft.Topic, string(draft.Tier), draft.Model,
		draft.Body, string(draft.Status), draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Get retrieves a draft by ID.
func (r *DraftRepo) Get(ctx context.Context, id string) (*domain.Draft, error) {
	var row draftRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM drafts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return row.toDomain(), nil
}

// List returns drafts ordered by creation time, newest first.
func (r *DraftRepo) List(ctx context.Context, limit int) ([]*domain.Draft, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []draftRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM drafts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	drafts := make([]*domain.Draft, len(rows))
	for i, row := range rows {
		drafts[i] = row.toDomain()
	}
	return drafts, nil
}

// UpdateStatus updates a draft's lifecycle status.
func (r *DraftRepo) UpdateStatus(ctx context.Context, id string, status domain.DraftStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE drafts SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update draft status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

// PruneFailed deletes failed drafts last touched before the cutoff.
func (r *DraftRepo) PruneFailed(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM drafts WHERE status = $1 AND updated_at < $2`,
		string(domain.DraftStatusFailed), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune drafts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
