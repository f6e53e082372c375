// Package pipeline drives one clip-generation job from pending to a
// terminal state. The orchestrator owns every mutation of the job record:
// it resolves the source, transcribes and normalizes speech, selects
// moments, creates clip records, processes each clip sequentially, and
// notifies on completion. Individual clip failures never abort the job;
// fatal conditions move it to failed with a short user-facing error.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clipforge/config"
	"clipforge/internal/asynctask"
	"clipforge/internal/mediatransform"
	"clipforge/internal/moments"
	"clipforge/internal/sourceinfo"
	"clipforge/internal/transcript"
	"clipforge/models"
)

// Store is the slice of the persistence layer the pipeline mutates.
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	CreateClips(ctx context.Context, clips []models.Clip) ([]models.Clip, error)
	UpdateClip(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// Transcriber produces the opaque speech-to-text payload for a media URL.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL string) (json.RawMessage, error)
}

// Selector ranks transcript segments into marketing moments.
type Selector interface {
	Select(ctx context.Context, segs []transcript.Segment, jc moments.JobContext) ([]moments.Moment, error)
}

// Transformer is the media-transform task surface used per clip.
type Transformer interface {
	SubmitTrim(ctx context.Context, videoURL string, startSec, endSec float64, format string) (string, error)
	SubmitFrameExtract(ctx context.Context, videoURL string) (string, error)
	SubmitCaption(ctx context.Context, videoURL string, style mediatransform.CaptionStyle) (string, error)
	PollTask(ctx context.Context, taskID string) (asynctask.Poll, error)
}

// ObjectStore persists artifact bytes and returns a public URL.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (string, int64, error)
}

// Notifier is the completion broadcast surface.
type Notifier interface {
	NotifyJobCompleted(ctx context.Context, userID, jobName string, completedClips, totalClips int) error
}

// SourceResolver looks up source video metadata. Best-effort.
type SourceResolver interface {
	Resolve(ctx context.Context, videoURL string) (*sourceinfo.VideoInfo, error)
}

// Submitter detaches an execution from the caller.
type Submitter interface {
	Submit(name string, fn func(ctx context.Context))
}

// Orchestrator coordinates one job end to end.
type Orchestrator struct {
	store     Store
	resolver  SourceResolver
	stt       Transcriber
	selector  Selector
	transform Transformer
	artifacts ObjectStore
	notifier  Notifier
	runner    Submitter
	budgets   config.Budgets
	http      *http.Client
	log       *logrus.Logger
}

// NewOrchestrator wires the pipeline dependencies.
func NewOrchestrator(
	store Store,
	resolver SourceResolver,
	stt Transcriber,
	selector Selector,
	transform Transformer,
	artifacts ObjectStore,
	notifier Notifier,
	runner Submitter,
	budgets config.Budgets,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:     store,
		resolver:  resolver,
		stt:       stt,
		selector:  selector,
		transform: transform,
		artifacts: artifacts,
		notifier:  notifier,
		runner:    runner,
		budgets:   budgets,
		http:      &http.Client{Timeout: 5 * time.Minute},
		log:       log,
	}
}

// Start launches job processing detached from the calling request. The
// caller gets no result; all further state is observable only by re-reading
// the job record.
func (o *Orchestrator) Start(jobID uuid.UUID) {
	o.runner.Submit(jobID.String(), func(ctx context.Context) {
		o.Process(ctx, jobID)
	})
}

// Process runs the full state machine for one job. Any panic inside the
// orchestration body marks the job failed rather than crashing the worker.
func (o *Orchestrator) Process(ctx context.Context, jobID uuid.UUID) {
	log := o.log.WithField("job_id", jobID.String())

	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).Error("job processing panicked")
			o.failJob(ctx, jobID, "internal processing error")
		}
	}()

	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		log.WithField("error", err.Error()).Error("could not load job for processing")
		return
	}

	if !validSourceURL(job.SourceVideoURL) {
		o.failJob(ctx, jobID, "source video URL is missing or invalid")
		return
	}

	// PENDING -> DOWNLOADING: source accepted.
	if err := o.updateJob(ctx, jobID, map[string]interface{}{
		"status":   models.JobStatusDownloading,
		"progress": 5,
	}); err != nil {
		log.WithField("error", err.Error()).Error("could not mark job downloading")
		return
	}

	mediaURL := job.SourceVideoURL
	if info, err := o.resolver.Resolve(ctx, job.SourceVideoURL); err != nil {
		// Resolution is best-effort; the raw URL still feeds transcription.
		if errors.Is(err, sourceinfo.ErrNotConfigured) {
			log.Debug("source resolver not configured")
		} else {
			log.WithField("error", err.Error()).Warn("source resolution failed, using raw URL")
		}
	} else {
		fields := map[string]interface{}{"progress": 15}
		if info.Duration > 0 {
			fields["video_duration_seconds"] = info.Duration
		}
		o.updateJob(ctx, jobID, fields)
	}

	rawTranscript, err := o.stt.Transcribe(ctx, mediaURL)
	if err != nil {
		log.WithField("error", err.Error()).Error("transcription failed")
		o.failJob(ctx, jobID, "transcription failed")
		return
	}

	segments := transcript.Normalize(rawTranscript)
	if len(segments) == 0 {
		o.failJob(ctx, jobID, "transcription produced no usable speech")
		return
	}
	log.WithField("segments", len(segments)).Info("transcript normalized")

	// DOWNLOADING -> ANALYZING.
	if err := o.updateJob(ctx, jobID, map[string]interface{}{
		"status":   models.JobStatusAnalyzing,
		"progress": 45,
	}); err != nil {
		log.WithField("error", err.Error()).Error("could not mark job analyzing")
		return
	}

	selected, err := o.selector.Select(ctx, segments, momentContext(job))
	if err != nil {
		log.WithField("error", err.Error()).Error("moment selection failed")
		o.failJob(ctx, jobID, "no high-potential marketing moments were found in this video")
		return
	}
	log.WithField("moments", len(selected)).Info("moments selected")

	if snapshot, err := json.Marshal(selected); err == nil {
		o.updateJob(ctx, jobID, map[string]interface{}{"analysis_results": json.RawMessage(snapshot)})
	}

	clips, err := o.createClipRecords(ctx, job, selected)
	if err != nil {
		log.WithField("error", err.Error()).Error("could not create clip records")
		o.failJob(ctx, jobID, "failed to create clip records")
		return
	}

	// ANALYZING -> CLIPPING.
	if err := o.updateJob(ctx, jobID, map[string]interface{}{
		"status":   models.JobStatusClipping,
		"progress": 60,
	}); err != nil {
		log.WithField("error", err.Error()).Error("could not mark job clipping")
		return
	}

	// Clips run strictly sequentially, highest-scored first. A failed clip
	// advances the attempt counter exactly like a successful one.
	completed := 0
	for i, clip := range clips {
		if o.processClip(ctx, job, clip, selected[i]) {
			completed++
		}
		attempted := i + 1
		o.updateJob(ctx, jobID, map[string]interface{}{
			"progress": 60 + (35*attempted)/len(clips),
		})
	}

	// CLIPPING -> COMPLETED: terminal regardless of per-clip outcomes.
	if err := o.updateJob(ctx, jobID, map[string]interface{}{
		"status":   models.JobStatusCompleted,
		"progress": 100,
	}); err != nil {
		log.WithField("error", err.Error()).Error("could not mark job completed")
		return
	}
	log.WithFields(logrus.Fields{
		"completed_clips": completed,
		"total_clips":     len(clips),
	}).Info("job completed")

	userID := ""
	if job.UserID != nil {
		userID = job.UserID.String()
	}
	if err := o.notifier.NotifyJobCompleted(ctx, userID, job.Name, completed, len(clips)); err != nil {
		// Notification is fire-and-forget; a delivery failure never flips
		// the job back.
		log.WithField("error", err.Error()).Warn("completion notification failed")
	}
}

// createClipRecords persists all pending clip rows for the selected
// moments in one batch, in selection order.
func (o *Orchestrator) createClipRecords(ctx context.Context, job *models.Job, selected []moments.Moment) ([]models.Clip, error) {
	now := time.Now()
	clips := make([]models.Clip, 0, len(selected))
	for _, m := range selected {
		m := m
		clips = append(clips, models.Clip{
			ID:                  uuid.New(),
			JobID:               job.ID,
			StartTime:           m.StartTime,
			EndTime:             m.EndTime,
			MomentType:          m.Type,
			MarketingScore:      m.MarketingScore,
			ConversionPotential: m.ConversionPotential,
			HookStrength:        m.HookStrength,
			EmotionalImpact:     m.EmotionalImpact,
			WhySelected:         &m.WhySelected,
			SuggestedCaption:    &m.SuggestedCaption,
			TranscriptExcerpt:   &m.TranscriptExcerpt,
			Status:              models.ClipStatusPending,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}
	return o.store.CreateClips(ctx, clips)
}

func momentContext(job *models.Job) moments.JobContext {
	return moments.JobContext{
		Industry:       deref(job.Industry),
		ProductContext: deref(job.ProductContext),
		TargetAudience: deref(job.TargetAudience),
		TargetFormat:   job.TargetFormat,
		TargetDuration: job.TargetDuration,
		MaxClips:       job.MaxClips,
	}
}

// failJob moves the job to failed with a short user-facing message.
// Progress is left untouched.
func (o *Orchestrator) failJob(ctx context.Context, jobID uuid.UUID, message string) {
	if err := o.store.UpdateJob(ctx, jobID, map[string]interface{}{
		"status":           models.JobStatusFailed,
		"processing_error": message,
	}); err != nil {
		o.log.WithFields(logrus.Fields{
			"job_id": jobID.String(),
			"error":  err.Error(),
		}).Error("could not mark job failed")
	}
}

// HandleRunnerPanic is the outer safety net wired into the background
// runner: if an execution escapes Process's own recovery, the job named by
// the task is still marked failed.
func (o *Orchestrator) HandleRunnerPanic(name string, recovered interface{}) {
	jobID, err := uuid.Parse(name)
	if err != nil {
		return
	}
	o.failJob(context.Background(), jobID, "internal processing error")
}

func (o *Orchestrator) updateJob(ctx context.Context, jobID uuid.UUID, fields map[string]interface{}) error {
	err := o.store.UpdateJob(ctx, jobID, fields)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"job_id": jobID.String(),
			"error":  err.Error(),
		}).Error("job update failed")
	}
	return err
}

func validSourceURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
