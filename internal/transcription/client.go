// Package transcription wraps the hosted speech-to-text service. The
// service is asynchronous: a submitted transcription is polled to
// completion through the asynctask package under the caller-configured
// budget. The completed payload is returned opaque; shape normalization is
// the transcript package's concern.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"clipforge/internal/asynctask"
)

// Client talks to the speech-to-text service.
type Client struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	log          *logrus.Logger
	maxWait      time.Duration
	pollInterval time.Duration
}

// NewClient builds a transcription client. maxWait bounds one full
// transcription; long source videos need a generous budget.
func NewClient(baseURL, apiKey string, maxWait, pollInterval time.Duration, log *logrus.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          log,
		maxWait:      maxWait,
		pollInterval: pollInterval,
	}
}

// Transcribe submits the media URL and polls until the transcript is ready.
// The returned payload is the provider's raw output, opaque to this client.
func (c *Client) Transcribe(ctx context.Context, mediaURL string) (json.RawMessage, error) {
	output, err := asynctask.Run(ctx, asynctask.Task{
		Submit: func(ctx context.Context) (string, error) {
			return c.submit(ctx, mediaURL)
		},
		PollOnce:     c.pollOnce,
		MaxWait:      c.maxWait,
		PollInterval: c.pollInterval,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(output), nil
}

func (c *Client) submit(ctx context.Context, mediaURL string) (string, error) {
	body, err := json.Marshal(map[string]string{"media_url": mediaURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transcriptions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit transcription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcription service status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("transcription service returned no id")
	}
	return created.ID, nil
}

func (c *Client) pollOnce(ctx context.Context, id string) (asynctask.Poll, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/transcriptions/"+id, nil)
	if err != nil {
		return asynctask.Poll{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return asynctask.Poll{}, fmt.Errorf("poll transcription %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return asynctask.Poll{}, fmt.Errorf("transcription service status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var state struct {
		Status string          `json:"status"`
		Output json.RawMessage `json:"output"`
		Error  string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return asynctask.Poll{}, fmt.Errorf("decode transcription state: %w", err)
	}

	return asynctask.Poll{
		Status: asynctask.Status(state.Status),
		Output: string(state.Output),
		Reason: state.Error,
	}, nil
}
