// Package notify delivers job completion events via ntfy. The notifier is
// fire-and-forget relative to the pipeline: a delivery failure is logged by
// the caller and never alters job state. When no topic is configured a noop
// implementation is returned so callers never branch.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const userAgent = "clipforge/1.0"

// Service is the notification surface exposed to the pipeline.
type Service interface {
	NotifyJobCompleted(ctx context.Context, userID, jobName string, completedClips, totalClips int) error
}

// NewService builds a notifier backed by ntfy when a topic is configured,
// and a noop otherwise.
func NewService(topic string, log *logrus.Logger) Service {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return noopService{}
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	log      *logrus.Logger
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, userID, jobName string, completedClips, totalClips int) error {
	message := fmt.Sprintf("%d of %d clips ready for %q", completedClips, totalClips, jobName)
	if userID != "" {
		message = fmt.Sprintf("%s (user %s)", message, userID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Title", "ClipForge - Job Complete")
	req.Header.Set("X-Tags", "clipforge,job,completed")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint status %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyJobCompleted(ctx context.Context, userID, jobName string, completedClips, totalClips int) error {
	return nil
}
