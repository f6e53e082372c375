package models

import (
	"time"

	"github.com/google/uuid"
)

// Clip statuses. Each clip advances independently of its siblings.
const (
	ClipStatusPending    = "pending"
	ClipStatusProcessing = "processing"
	ClipStatusCompleted  = "completed"
	ClipStatusFailed     = "failed"
)

// Moment types a clip can be selected as.
const (
	MomentHook        = "hook"
	MomentTestimonial = "testimonial"
	MomentBenefit     = "benefit"
	MomentCTA         = "cta"
	MomentSocialProof = "social_proof"
	MomentUrgency     = "urgency"
)

// Clip represents one selected sub-range of a source video in the database.
// A clip is owned by exactly one job.
type Clip struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`

	MomentType          string  `json:"moment_type"`
	MarketingScore      int     `json:"marketing_score"`
	ConversionPotential int     `json:"conversion_potential"`
	HookStrength        int     `json:"hook_strength"`
	EmotionalImpact     int     `json:"emotional_impact"`
	WhySelected         *string `json:"why_selected,omitempty"`
	SuggestedCaption    *string `json:"suggested_caption,omitempty"`
	TranscriptExcerpt   *string `json:"transcript_excerpt,omitempty"`

	Status             string  `json:"status"`
	ProcessingProgress int     `json:"processing_progress"`
	ClipURL            *string `json:"clip_url,omitempty"`
	ThumbnailURL       *string `json:"thumbnail_url,omitempty"`
	CaptionedURL       *string `json:"captioned_url,omitempty"`
	FileSizeBytes      *int64  `json:"file_size_bytes,omitempty"` // Nullable BIGINT
	ProcessingError    *string `json:"processing_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
