// Package latex is a thin client for the LaTeX-to-PDF compilation proxy.
// The proxy forwards documents to a remote compiler; this client carries
// no retry logic of its own, only error-message cleanup.
package latex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vietddude/scribe/internal/metrics"
)

// Config holds compile proxy settings.
type Config struct {
	URL     string        `yaml:"url"     env:"LATEX_PROXY_URL"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to the compile proxy.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a compile proxy client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Compile sends LaTeX source to the proxy and returns the PDF bytes.
func (c *Client) Compile(ctx context.Context, source string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"source": source})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CompilesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("compile call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CompilesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.CompilesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("compilation failed: %s", CleanCompilerLog(string(respBody)))
	}

	metrics.CompilesTotal.WithLabelValues("success").Inc()
	return respBody, nil
}

// CleanCompilerLog strips compiler log noise down to the error lines a
// user can act on: the "!"-prefixed messages and their "l.<n>" locations.
// Falls back to the tail of the log when no error line is present.
func CleanCompilerLog(log string) string {
	var kept []string
	for _, line := range strings.Split(log, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "!") || strings.HasPrefix(trimmed, "l.") {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) > 0 {
		return strings.Join(kept, "\n")
	}

	lines := strings.Split(strings.TrimSpace(log), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
