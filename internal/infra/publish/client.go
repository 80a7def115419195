// Package publish is a client for the research-repository publishing API.
// Publishing is a fixed sequence of HTTP calls (create submission, upload
// PDF, finalize); transient 5xx responses are retried with a simple
// bounded backoff, with no key rotation involved.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vietddude/scribe/internal/core/domain"
	"github.com/vietddude/scribe/internal/metrics"
)

// Config holds publishing service settings.
type Config struct {
	BaseURL  string        `yaml:"base_url"  env:"PUBLISH_BASE_URL"`
	APIToken string        `yaml:"api_token" env:"PUBLISH_API_TOKEN"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Client talks to the publishing API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a publishing client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type submissionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Publish runs the submission sequence for a compiled draft and returns
// the resulting record. Calls are strictly sequential.
func (c *Client) Publish(
	ctx context.Context,
	draft *domain.Draft,
	pdf []byte,
) (*domain.PublishRecord, error) {
	created, err := c.createSubmission(ctx, draft)
	if err != nil {
		metrics.PublishesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if err := c.uploadPDF(ctx, created.ID, pdf); err != nil {
		metrics.PublishesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upload pdf: %w", err)
	}

	finalized, err := c.finalize(ctx, created.ID)
	if err != nil {
		metrics.PublishesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("finalize submission: %w", err)
	}

	metrics.PublishesTotal.WithLabelValues("success").Inc()
	return &domain.PublishRecord{
		DraftID:      draft.ID,
		SubmissionID: created.ID,
		URL:          finalized.URL,
		PublishedAt:  time.Now(),
	}, nil
}

func (c *Client) createSubmission(ctx context.Context, draft *domain.Draft) (*submissionResponse, error) {
	body, err := json.Marshal(map[string]string{
		"title": draft.Topic,
		"type":  "paper",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var out submissionResponse
	if err := c.do(ctx, "POST", "/submissions", "application/json", body, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("service returned no submission id")
	}
	return &out, nil
}

func (c *Client) uploadPDF(ctx context.Context, submissionID string, pdf []byte) error {
	path := fmt.Sprintf("/submissions/%s/pdf", submissionID)
	return c.do(ctx, "PUT", path, "application/pdf", pdf, nil)
}

func (c *Client) finalize(ctx context.Context, submissionID string) (*submissionResponse, error) {
	path := fmt.Sprintf("/submissions/%s/finalize", submissionID)
	var out submissionResponse
	if err := c.do(ctx, "POST", path, "application/json", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one HTTP call with bounded retry on 5xx responses.
func (c *Client) do(
	ctx context.Context,
	method, path, contentType string,
	body []byte,
	out any,
) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		if c.apiToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%s %s: %w", method, path, err))
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			return retry.RetryableError(
				fmt.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, string(respBody)),
			)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, string(respBody))
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
		}
		return nil
	})
}
