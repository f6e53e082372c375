package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipforge/internal/asynctask"
	"clipforge/internal/mediatransform"
	"clipforge/internal/moments"
	"clipforge/internal/storage"
	"clipforge/models"
)

// maxArtifactBytes caps how much of a transform output gets buffered
// before upload. Trimmed clips for short-form formats stay well under it.
const maxArtifactBytes = 512 << 20

// processClip runs trim, upload, thumbnail, and caption for one clip and
// reports whether the clip completed. Trim and upload are mandatory;
// thumbnail and caption failures leave the clip completed without that
// artifact. Every error path lands the clip in a terminal status, so a
// stuck sibling never blocks the rest of the job.
func (o *Orchestrator) processClip(ctx context.Context, job *models.Job, clip models.Clip, m moments.Moment) bool {
	log := o.log.WithFields(logrus.Fields{
		"job_id":  job.ID.String(),
		"clip_id": clip.ID.String(),
	})

	o.updateClip(ctx, clip.ID, map[string]interface{}{
		"status":              models.ClipStatusProcessing,
		"processing_progress": 10,
	})

	trimOut, err := asynctask.Run(ctx, asynctask.Task{
		Submit: func(ctx context.Context) (string, error) {
			return o.transform.SubmitTrim(ctx, job.SourceVideoURL, clip.StartTime, clip.EndTime, job.TargetFormat)
		},
		PollOnce:     o.transform.PollTask,
		MaxWait:      o.budgets.TrimMaxWait,
		PollInterval: o.budgets.TaskPollInterval,
	})
	if err != nil {
		log.WithField("error", err.Error()).Error("clip trim failed")
		o.failClip(ctx, clip.ID, clipErrorMessage("trim", err))
		return false
	}
	o.updateClip(ctx, clip.ID, map[string]interface{}{"processing_progress": 50})

	// Transform outputs are short-lived; download immediately and re-home
	// the bytes in our own bucket.
	data, err := o.download(ctx, trimOut)
	if err != nil {
		log.WithField("error", err.Error()).Error("clip download failed")
		o.failClip(ctx, clip.ID, "could not retrieve the trimmed clip")
		return false
	}

	path := storage.ObjectPath(userIDString(job), job.ID.String(), clip.ID.String(), ".mp4")
	clipURL, size, err := o.artifacts.Put(ctx, path, data, "video/mp4")
	if err != nil {
		log.WithField("error", err.Error()).Error("clip upload failed")
		o.failClip(ctx, clip.ID, "could not store the trimmed clip")
		return false
	}
	o.updateClip(ctx, clip.ID, map[string]interface{}{
		"clip_url":            clipURL,
		"file_size_bytes":     size,
		"processing_progress": 70,
	})

	fields := map[string]interface{}{
		"status":              models.ClipStatusCompleted,
		"processing_progress": 100,
	}

	if thumbURL := o.makeThumbnail(ctx, job, clip, clipURL); thumbURL != "" {
		fields["thumbnail_url"] = thumbURL
	}
	if job.AddCaptions {
		if capURL := o.makeCaptioned(ctx, job, clip, clipURL); capURL != "" {
			fields["captioned_url"] = capURL
		}
	}

	o.updateClip(ctx, clip.ID, fields)
	log.WithField("bytes", size).Info("clip completed")
	return true
}

// makeThumbnail extracts a representative frame from the trimmed clip.
// Best-effort: any failure returns "" and the clip keeps no thumbnail.
func (o *Orchestrator) makeThumbnail(ctx context.Context, job *models.Job, clip models.Clip, clipURL string) string {
	out, err := asynctask.Run(ctx, asynctask.Task{
		Submit: func(ctx context.Context) (string, error) {
			return o.transform.SubmitFrameExtract(ctx, clipURL)
		},
		PollOnce:     o.transform.PollTask,
		MaxWait:      o.budgets.ThumbnailMaxWait,
		PollInterval: o.budgets.TaskPollInterval,
	})
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"clip_id": clip.ID.String(),
			"error":   err.Error(),
		}).Warn("thumbnail generation failed")
		return ""
	}

	data, err := o.download(ctx, out)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"clip_id": clip.ID.String(),
			"error":   err.Error(),
		}).Warn("thumbnail download failed")
		return ""
	}

	path := storage.ObjectPath(userIDString(job), job.ID.String(), clip.ID.String()+"_thumb", ".jpg")
	url, _, err := o.artifacts.Put(ctx, path, data, "image/jpeg")
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"clip_id": clip.ID.String(),
			"error":   err.Error(),
		}).Warn("thumbnail upload failed")
		return ""
	}
	return url
}

// makeCaptioned burns subtitles into the trimmed clip using the job's
// caption style. Best-effort like thumbnails.
func (o *Orchestrator) makeCaptioned(ctx context.Context, job *models.Job, clip models.Clip, clipURL string) string {
	style := mediatransform.StyleByName(deref(job.CaptionStyle))
	out, err := asynctask.Run(ctx, asynctask.Task{
		Submit: func(ctx context.Context) (string, error) {
			return o.transform.SubmitCaption(ctx, clipURL, style)
		},
		PollOnce:     o.transform.PollTask,
		MaxWait:      o.budgets.CaptionMaxWait,
		PollInterval: o.budgets.TaskPollInterval,
	})
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"clip_id": clip.ID.String(),
			"error":   err.Error(),
		}).Warn("caption generation failed")
		return ""
	}

	data, err := o.download(ctx, out)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"clip_id": clip.ID.String(),
			"error":   err.Error(),
		}).Warn("captioned clip download failed")
		return ""
	}

	path := storage.ObjectPath(userIDString(job), job.ID.String(), clip.ID.String()+"_captioned", ".mp4")
	url, _, err := o.artifacts.Put(ctx, path, data, "video/mp4")
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"clip_id": clip.ID.String(),
			"error":   err.Error(),
		}).Warn("captioned clip upload failed")
		return ""
	}
	return url
}

// download fetches an artifact produced by the transform service.
func (o *Orchestrator) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artifact fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxArtifactBytes {
		return nil, fmt.Errorf("artifact exceeds %d byte limit", maxArtifactBytes)
	}
	return data, nil
}

func (o *Orchestrator) failClip(ctx context.Context, clipID uuid.UUID, message string) {
	o.updateClip(ctx, clipID, map[string]interface{}{
		"status":           models.ClipStatusFailed,
		"processing_error": message,
	})
}

func (o *Orchestrator) updateClip(ctx context.Context, clipID uuid.UUID, fields map[string]interface{}) {
	if err := o.store.UpdateClip(ctx, clipID, fields); err != nil {
		o.log.WithFields(logrus.Fields{
			"clip_id": clipID.String(),
			"error":   err.Error(),
		}).Error("clip update failed")
	}
}

// clipErrorMessage maps an async-task failure to a short user-facing
// string. Provider reasons pass through; internal task ids do not.
func clipErrorMessage(step string, err error) string {
	var failed *asynctask.FailedError
	if errors.As(err, &failed) {
		if failed.Reason != "" {
			return fmt.Sprintf("clip %s failed: %s", step, failed.Reason)
		}
		return fmt.Sprintf("clip %s failed", step)
	}
	var timedOut *asynctask.TimeoutError
	if errors.As(err, &timedOut) {
		return fmt.Sprintf("clip %s timed out after %s", step, timedOut.Elapsed.Round(time.Second))
	}
	return fmt.Sprintf("clip %s failed", step)
}

func userIDString(job *models.Job) string {
	if job.UserID == nil {
		return ""
	}
	return job.UserID.String()
}
