package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vietddude/scribe/internal/core/domain"
)

// DefaultBaseURL is the production endpoint of the text backend.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Session is an HTTP client bound to a single API key. The executor
// constructs one per attempt from the active key.
type Session struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSession creates a session bound to the given key.
func NewSession(apiKey, baseURL string, timeout time.Duration) *Session {
	return &Session{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateContentRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent issues one request against the given model and returns
// the concatenated candidate text. Backend failures are returned with the
// upstream status and message intact; the routing layer classifies them
// by that text.
func (s *Session) GenerateContent(
	ctx context.Context,
	model string,
	req domain.GenerationRequest,
) (string, error) {
	body := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []contentPart{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      req.Temperature,
			MaxOutputTokens:  req.MaxOutputTokens,
			ResponseMIMEType: req.ResponseMIMEType,
		},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &content{Parts: []contentPart{{Text: req.SystemInstruction}}}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("parse response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf(
			"http %d %s: %s",
			parsed.Error.Code, parsed.Error.Status, parsed.Error.Message,
		)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
	}

	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("empty response: no candidates returned")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
