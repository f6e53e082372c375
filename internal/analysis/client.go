// Package analysis calls the hosted language-analysis service used to rank
// marketing moments. The service speaks an OpenRouter-style chat-completions
// API; callers receive the raw response text and extract structure
// themselves. A client without credentials returns ErrNotConfigured so the
// moment selector can take its deterministic fallback path.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured marks a client with no API key or base URL. Distinct
// from a configured service erroring so operators can tell the two apart in
// logs; both fall back the same way.
var ErrNotConfigured = errors.New("analysis service not configured")

const requestTimeout = 90 * time.Second

// Client talks to the language-analysis service.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *logrus.Logger
}

// NewClient builds an analysis client. baseURL and apiKey may be empty; the
// resulting client reports ErrNotConfigured on use.
func NewClient(baseURL, apiKey, model string, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Configured reports whether the client has enough settings to make calls.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Analyze sends the prompt and returns the assistant's response text.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	payload := map[string]any{
		"model":  c.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("analysis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("analysis service status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode analysis response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("analysis response has no choices")
	}

	return contentToString(raw.Choices[0].Message.Content)
}

// contentToString flattens the message content, which some providers return
// as a string and others as an array of {type,text} parts.
func contentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("analysis response content is empty")
		}
		return s, nil
	default:
		return "", fmt.Errorf("unexpected analysis content type %T", v)
	}
}
