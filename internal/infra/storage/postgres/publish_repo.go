package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
)

// PublishRepo implements storage.PublishRepository using PostgreSQL.
type PublishRepo struct {
	db *DB
}

// NewPublishRepo creates a new PostgreSQL publish record repository.
func NewPublishRepo(db *DB) *PublishRepo {
	return &PublishRepo{db: db}
}

type publishRow struct {
	ID           string    `db:"id"`
	DraftID      string    `db:"draft_id"`
	SubmissionID string    `db:"submission_id"`
	URL          string    `db:"url"`
	PublishedAt  time.Time `db:"published_at"`
}

// Save inserts a publish record.
func (r *PublishRepo) Save(ctx context.Context, record *domain.PublishRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO publish_records (id, draft_id, submission_id, url, published_at)
		VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.DraftID, record.SubmissionID, record.URL, record.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save publish record: %w", err)
	}
	return nil
}

// GetByDraft retrieves the publish record for a draft, nil if none.
func (r *PublishRepo) GetByDraft(ctx context.Context, draftID string) (*domain.PublishRecord, error) {
	var row publishRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM publish_records WHERE draft_id = $1`, draftID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get publish record: %w", err)
	}

	return &domain.PublishRecord{
		ID:           row.ID,
		DraftID:      row.DraftID,
		SubmissionID: row.SubmissionID,
		URL:          row.URL,
		PublishedAt:  row.PublishedAt,
	}, nil
}
