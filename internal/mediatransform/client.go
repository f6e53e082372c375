// Package mediatransform wraps the media-transform service: an async task
// API that trims clips, extracts frames, and burns captions. All three task
// kinds share one submit/poll contract; callers drive polling through the
// asynctask package with their own wait budgets. Task outputs are short
// lived, so callers must download results immediately.
package mediatransform

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

// Client talks to the media-transform service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Logger
}

// NewClient builds a media-transform client.
func NewClient(baseURL, apiKey string, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// SubmitTrim starts a trim task. Start and end are expressed as MM:SS, the
// only timestamp format the service accepts.
func (c *Client) SubmitTrim(ctx context.Context, videoURL string, startSec, endSec float64, format string) (string, error) {
	return c.submit(ctx, map[string]any{
		"type":      "trim",
		"video_url": videoURL,
		"start":     FormatTimestamp(startSec),
		"end":       FormatTimestamp(endSec),
		"format":    format,
	})
}

// SubmitFrameExtract starts a frame-extraction task producing a thumbnail.
func (c *Client) SubmitFrameExtract(ctx context.Context, videoURL string) (string, error) {
	return c.submit(ctx, map[string]any{
		"type":      "frame",
		"video_url": videoURL,
	})
}

// SubmitCaption starts a caption burn-in task using a resolved style preset.
func (c *Client) SubmitCaption(ctx context.Context, videoURL string, style CaptionStyle) (string, error) {
	return c.submit(ctx, map[string]any{
		"type":      "caption",
		"video_url": videoURL,
		"style": map[string]any{
			"font_family":   style.FontFamily,
			"font_size":     style.FontSize,
			"primary_color": style.PrimaryColor,
			"outline_color": style.OutlineColor,
			"stroke_width":  style.StrokeWidth,
			"position":      style.Position,
		},
	})
}

func (c *Client) submit(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal task payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tasks", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit %s task: %w", payload["type"], err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transform service status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode task response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("transform service returned no task id")
	}
	return created.ID, nil
}

// PollTask fetches the current state of any transform task.
func (c *Client) PollTask(ctx context.Context, taskID string) (asynctask.Poll, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/tasks/"+taskID, nil)
	if err != nil {
		return asynctask.Poll{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return asynctask.Poll{}, fmt.Errorf("poll task %s: %w", taskID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return asynctask.Poll{}, fmt.Errorf("transform service status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var state struct {
		Status string `json:"status"`
		Output struct {
			URL string `json:"url"`
		} `json:"output"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return asynctask.Poll{}, fmt.Errorf("decode task state: %w", err)
	}

	return asynctask.Poll{
		Status: asynctask.Status(state.Status),
		Output: state.Output.URL,
		Reason: state.Error,
	}, nil
}

// FormatTimestamp renders seconds as MM:SS, rounding down to whole seconds.
// Minutes are not wrapped at 60: 4000s is "66:40".
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
