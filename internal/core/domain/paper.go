package domain

import "time"

// DraftStatus tracks a draft through its lifecycle.
type DraftStatus string

const (
	DraftStatusGenerated DraftStatus = "generated"
	DraftStatusCompiled  DraftStatus = "compiled"
	DraftStatusPublished DraftStatus = "published"
	DraftStatusFailed    DraftStatus = "failed"
)

// Draft represents a generated paper draft.
type Draft struct {
	ID        string
	Topic     string
	Tier      ModelTier
	Model     string // concrete model that produced the body
	Body      string // LaTeX source
	Status    DraftStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublishRecord tracks a submission to the research repository.
type PublishRecord struct {
	ID           string
	DraftID      string
	SubmissionID string // identifier assigned by the publishing service
	URL          string
	PublishedAt  time.Time
}
