package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
	"github.com/vietddude/scribe/internal/infra/storage/memory"
)

type stubGenerator struct {
	result *domain.GenerationResult
	err    error
	gotReq domain.GenerationRequest
}

func (g *stubGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	g.gotReq = req
	return g.result, g.err
}

type stubCompiler struct {
	pdf []byte
	err error
}

func (c *stubCompiler) Compile(ctx context.Context, source string) ([]byte, error) {
	return c.pdf, c.err
}

type stubPublisher struct {
	record *domain.PublishRecord
	err    error
	calls  int
}

func (p *stubPublisher) Publish(ctx context.Context, draft *domain.Draft, pdf []byte) (*domain.PublishRecord, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	rec := *p.record
	rec.DraftID = draft.ID
	return &rec, nil
}

func newTestService(gen *stubGenerator, comp *stubCompiler, pub *stubPublisher) *Service {
	store := memory.NewMemoryStorage()
	return NewService(gen, comp, pub, memory.NewDraftRepo(store), memory.NewPublishRepo(store))
}

func TestGeneratePaper_PersistsDraft(t *testing.T) {
	gen := &stubGenerator{result: &domain.GenerationResult{
		Text:  "\\documentclass{article}...",
		Model: "gemini-2.5-flash",
	}}
	svc := newTestService(gen, &stubCompiler{}, &stubPublisher{})

	draft, err := svc.GeneratePaper(context.Background(), "emergent retry behavior", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.ID == "" {
		t.Error("draft has no ID")
	}
	if draft.Status != domain.DraftStatusGenerated {
		t.Errorf("status = %q", draft.Status)
	}
	if draft.Tier != domain.TierFlash {
		t.Errorf("empty tier should default to flash, got %q", draft.Tier)
	}
	if !strings.Contains(gen.gotReq.Prompt, "emergent retry behavior") {
		t.Errorf("prompt %q does not carry the topic", gen.gotReq.Prompt)
	}

	stored, err := svc.GetDraft(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("draft not persisted: %v", err)
	}
	if stored.Body != draft.Body {
		t.Error("persisted body differs")
	}
}

func TestGeneratePaper_EmptyTopic(t *testing.T) {
	svc := newTestService(&stubGenerator{}, &stubCompiler{}, &stubPublisher{})
	if _, err := svc.GeneratePaper(context.Background(), "", domain.TierPro); err == nil {
		t.Fatal("expected error for empty topic")
	}
}

func TestPublish_FullLifecycle(t *testing.T) {
	gen := &stubGenerator{result: &domain.GenerationResult{Text: "src", Model: "m"}}
	pub := &stubPublisher{record: &domain.PublishRecord{
		SubmissionID: "sub-1",
		URL:          "https://repo.example/abs/sub-1",
	}}
	svc := newTestService(gen, &stubCompiler{pdf: []byte("%PDF")}, pub)

	draft, err := svc.GeneratePaper(context.Background(), "topic", domain.TierPro)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	record, err := svc.Publish(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if record.ID == "" {
		t.Error("record has no ID")
	}
	if record.SubmissionID != "sub-1" {
		t.Errorf("submission = %q", record.SubmissionID)
	}

	updated, _ := svc.GetDraft(context.Background(), draft.ID)
	if updated.Status != domain.DraftStatusPublished {
		t.Errorf("status = %q, want published", updated.Status)
	}
}

func TestPublish_IsIdempotent(t *testing.T) {
	gen := &stubGenerator{result: &domain.GenerationResult{Text: "src", Model: "m"}}
	pub := &stubPublisher{record: &domain.PublishRecord{SubmissionID: "sub-2", URL: "u"}}
	svc := newTestService(gen, &stubCompiler{pdf: []byte("%PDF")}, pub)

	draft, _ := svc.GeneratePaper(context.Background(), "topic", domain.TierPro)

	first, err := svc.Publish(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	second, err := svc.Publish(context.Background(), draft.ID)
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if pub.calls != 1 {
		t.Errorf("publisher called %d times, want 1", pub.calls)
	}
	if first.SubmissionID != second.SubmissionID {
		t.Error("second publish returned a different record")
	}
}

func TestPublish_CompileFailureKeepsDraftUnpublished(t *testing.T) {
	gen := &stubGenerator{result: &domain.GenerationResult{Text: "src", Model: "m"}}
	comp := &stubCompiler{err: errors.New("! Undefined control sequence.")}
	pub := &stubPublisher{record: &domain.PublishRecord{}}
	svc := newTestService(gen, comp, pub)

	draft, _ := svc.GeneratePaper(context.Background(), "topic", domain.TierPro)

	if _, err := svc.Publish(context.Background(), draft.ID); err == nil {
		t.Fatal("expected compile error")
	}
	if pub.calls != 0 {
		t.Errorf("publisher called %d times after failed compile", pub.calls)
	}

	updated, _ := svc.GetDraft(context.Background(), draft.ID)
	if updated.Status != domain.DraftStatusFailed {
		t.Errorf("status = %q, want failed", updated.Status)
	}
}

func TestPruneFailedDrafts(t *testing.T) {
	gen := &stubGenerator{result: &domain.GenerationResult{Text: "src", Model: "m"}}
	comp := &stubCompiler{err: errors.New("! Emergency stop.")}
	svc := newTestService(gen, comp, &stubPublisher{})

	failed, _ := svc.GeneratePaper(context.Background(), "doomed topic", domain.TierFlash)
	svc.Compile(context.Background(), failed.ID)
	kept, _ := svc.GeneratePaper(context.Background(), "healthy topic", domain.TierFlash)

	n, err := svc.PruneFailedDrafts(context.Background(), time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d drafts, want 1", n)
	}
	if _, err := svc.GetDraft(context.Background(), failed.ID); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Errorf("failed draft still present, err = %v", err)
	}
	if _, err := svc.GetDraft(context.Background(), kept.ID); err != nil {
		t.Errorf("healthy draft was pruned: %v", err)
	}
}

func TestPublish_UnknownDraft(t *testing.T) {
	svc := newTestService(&stubGenerator{}, &stubCompiler{}, &stubPublisher{})
	_, err := svc.Publish(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDraftNotFound) {
		t.Errorf("error = %v, want ErrDraftNotFound", err)
	}
}
