// Package generation orchestrates the model invocation layer, the
// compile proxy, and the publishing service into the paper lifecycle:
// generate a draft, compile it, publish it.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/scribe/internal/core/domain"
	"github.com/vietddude/scribe/internal/infra/storage"
)

// Generator is the model invocation layer. Satisfied by genai.Client;
// tests use a stub.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// Compiler turns LaTeX source into PDF bytes. Satisfied by latex.Client.
type Compiler interface {
	Compile(ctx context.Context, source string) ([]byte, error)
}

// Publisher submits a compiled draft. Satisfied by publish.Client.
type Publisher interface {
	Publish(ctx context.Context, draft *domain.Draft, pdf []byte) (*domain.PublishRecord, error)
}

// SystemInstruction frames every generation request. Shared with the
// one-shot CLI path so the two cannot drift.
const SystemInstruction = "You are an academic author. Produce a complete, " +
	"self-contained LaTeX document (\\documentclass through \\end{document}) " +
	"for the requested topic. Output only LaTeX source, no commentary."

// Service drives the paper lifecycle.
type Service struct {
	generator Generator
	compiler  Compiler
	publisher Publisher
	drafts    storage.DraftRepository
	records   storage.PublishRepository
}

// NewService creates a generation service.
func NewService(
	generator Generator,
	compiler Compiler,
	publisher Publisher,
	drafts storage.DraftRepository,
	records storage.PublishRepository,
) *Service {
	return &Service{
		generator: generator,
		compiler:  compiler,
		publisher: publisher,
		drafts:    drafts,
		records:   records,
	}
}

// GeneratePaper produces a new draft for the topic and persists it.
func (s *Service) GeneratePaper(
	ctx context.Context,
	topic string,
	tier domain.ModelTier,
) (*domain.Draft, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}
	if tier == "" {
		tier = domain.TierFlash
	}

	result, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Tier:              tier,
		SystemInstruction: SystemInstruction,
		Prompt:            fmt.Sprintf("Write an academic paper on: %s", topic),
		Temperature:       0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate paper: %w", err)
	}

	now := time.Now()
	draft := &domain.Draft{
		ID:        uuid.NewString(),
		Topic:     topic,
		Tier:      tier,
		Model:     result.Model,
		Body:      result.Text,
		Status:    domain.DraftStatusGenerated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	slog.Info("Generated draft", "draft", draft.ID, "model", draft.Model, "topic", topic)
	return draft, nil
}

// Compile compiles a draft to PDF and advances its status.
func (s *Service) Compile(ctx context.Context, draftID string) ([]byte, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.compiler.Compile(ctx, draft.Body)
	if err != nil {
		if statusErr := s.drafts.UpdateStatus(ctx, draftID, domain.DraftStatusFailed); statusErr != nil {
			slog.Warn("Failed to mark draft failed", "draft", draftID, "error", statusErr)
		}
		return nil, fmt.Errorf("compile draft %s: %w", draftID, err)
	}

	if err := s.drafts.UpdateStatus(ctx, draftID, domain.DraftStatusCompiled); err != nil {
		return nil, err
	}
	return pdf, nil
}

// Publish compiles a draft and submits it to the research repository.
// Publishing an already-published draft returns the existing record.
func (s *Service) Publish(ctx context.Context, draftID string) (*domain.PublishRecord, error) {
	if existing, err := s.records.GetByDraft(ctx, draftID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.Compile(ctx, draftID)
	if err != nil {
		return nil, err
	}

	record, err := s.publisher.Publish(ctx, draft, pdf)
	if err != nil {
		return nil, fmt.Errorf("publish draft %s: %w", draftID, err)
	}
	record.ID = uuid.NewString()

	if err := s.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save publish record: %w", err)
	}
	if err := s.drafts.UpdateStatus(ctx, draftID, domain.DraftStatusPublished); err != nil {
		return nil, err
	}

	slog.Info("Published draft", "draft", draftID, "submission", record.SubmissionID, "url", record.URL)
	return record, nil
}

// ListDrafts returns recent drafts.
func (s *Service) ListDrafts(ctx context.Context, limit int) ([]*domain.Draft, error) {
	return s.drafts.List(ctx, limit)
}

// GetDraft returns one draft.
func (s *Service) GetDraft(ctx context.Context, id string) (*domain.Draft, error) {
	return s.drafts.Get(ctx, id)
}

// PruneFailedDrafts removes failed drafts last touched before the cutoff.
func (s *Service) PruneFailedDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.drafts.PruneFailed(ctx, cutoff)
}
