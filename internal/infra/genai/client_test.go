package genai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
	"github.com/vietddude/scribe/internal/infra/genai/credential"
)

type fixedStore struct {
	keys []string
}

func (s *fixedStore) KeyList(ctx context.Context) ([]string, error) { return s.keys, nil }
func (s *fixedStore) LegacyKey(ctx context.Context) (string, error) { return "", nil }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func successBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`, text)
}

const quotaZeroBody = `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED",` +
	`"message":"Quota exceeded for quota metric 'GenerateContent requests', limit: 0"}}`

func newTestClient(t *testing.T, handler http.HandlerFunc, keys ...string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	pool := credential.NewPool(&fixedStore{keys: keys}, "")
	return NewClient(pool, WithBaseURL(srv.URL), WithSleeper(noSleep))
}

func TestModelForTier(t *testing.T) {
	tests := []struct {
		tier domain.ModelTier
		want string
	}{
		{domain.TierPro, "gemini-2.5-pro"},
		{domain.TierFlash, "gemini-2.5-flash"},
		{domain.ModelTier("unknown"), "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := ModelForTier(tt.tier); got != tt.want {
			t.Errorf("ModelForTier(%q) = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestGenerate_SendsBoundKey(t *testing.T) {
	var gotKey, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		fmt.Fprint(w, successBody("\\section{Introduction}"))
	}, "secret-key")

	result, err := client.Generate(context.Background(), domain.GenerationRequest{
		Tier:   domain.TierPro,
		Prompt: "write the introduction",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "\\section{Introduction}" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q, want gemini-2.5-pro", result.Model)
	}
	if gotKey != "secret-key" {
		t.Errorf("request key = %q, want secret-key", gotKey)
	}
	if !strings.Contains(gotPath, "gemini-2.5-pro:generateContent") {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestGenerate_FlashQuotaFallsBackTransparently(t *testing.T) {
	flashCalls, fallbackCalls := 0, 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "gemini-2.5-flash"):
			flashCalls++
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, quotaZeroBody)
		case strings.Contains(r.URL.Path, fallbackFlashModel):
			fallbackCalls++
			fmt.Fprint(w, successBody("degraded but alive"))
		default:
			t.Errorf("unexpected model path %q", r.URL.Path)
		}
	}, "key-1")

	result, err := client.Generate(context.Background(), domain.GenerationRequest{
		Tier:   domain.TierFlash,
		Prompt: "write the abstract",
	})
	if err != nil {
		t.Fatalf("caller must not observe the intermediate failure, got: %v", err)
	}
	if result.Text != "degraded but alive" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Model != fallbackFlashModel {
		t.Errorf("model = %q, want %q", result.Model, fallbackFlashModel)
	}
	if flashCalls != 1 || fallbackCalls != 1 {
		t.Errorf("calls = %d flash / %d fallback, want 1/1", flashCalls, fallbackCalls)
	}
}

func TestGenerate_ProQuotaDoesNotFallBack(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, quotaZeroBody)
	}, "key-1")

	_, err := client.Generate(context.Background(), domain.GenerationRequest{
		Tier:   domain.TierPro,
		Prompt: "write the conclusion",
	})
	if err == nil {
		t.Fatal("expected error: the fallback path is flash-tier only")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGenerate_FatalBackendErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"contents must not be empty"}}`)
	}, "key-1")

	_, err := client.Generate(context.Background(), domain.GenerationRequest{Tier: domain.TierFlash})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Errorf("error %q does not carry the upstream status", err)
	}
}
