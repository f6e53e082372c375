// Package sourceinfo resolves metadata about a source video through the
// downloader sidecar, a small service wrapping yt-dlp. Resolution is
// best-effort: when the sidecar is unconfigured or unreachable the pipeline
// proceeds with the raw source URL and no known duration.
package sourceinfo

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

// ErrNotConfigured marks a client with no sidecar URL.
var ErrNotConfigured = errors.New("source resolver not configured")

// VideoInfo is the subset of sidecar metadata the pipeline uses.
type VideoInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Channel  string  `json:"channel"`
}

// Client talks to the downloader sidecar.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Logger
}

// NewClient builds a source resolver client. baseURL may be empty.
func NewClient(baseURL, apiKey string, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// Resolve fetches video metadata for the given URL.
func (c *Client) Resolve(ctx context.Context, videoURL string) (*VideoInfo, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{
		"url":     videoURL,
		"api_key": c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/info", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve source info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("source resolver status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var info VideoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode source info: %w", err)
	}
	return &info, nil
}
