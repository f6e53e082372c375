package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job statuses. A job only moves forward through these; "failed" is
// reachable from any non-terminal status.
const (
	JobStatusPending     = "pending"
	JobStatusDownloading = "downloading"
	JobStatusAnalyzing   = "analyzing"
	JobStatusClipping    = "clipping"
	JobStatusCompleted   = "completed"
	JobStatusFailed      = "failed"
)

// Target output formats for generated clips.
const (
	FormatVertical   = "vertical"
	FormatSquare     = "square"
	FormatHorizontal = "horizontal"
)

// Job represents a clip-generation job in the database.
type Job struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"` // Nullable foreign key
	Name           string     `json:"name"`
	SourceVideoURL string     `json:"source_video_url"`
	TargetFormat   string     `json:"target_format"`
	TargetDuration int        `json:"target_duration_seconds"`
	MaxClips       int        `json:"max_clips"`
	AddCaptions    bool       `json:"add_captions"`
	CaptionStyle   *string    `json:"caption_style,omitempty"`

	// Campaign context forwarded to moment selection.
	Industry       *string `json:"industry,omitempty"`
	ProductContext *string `json:"product_context,omitempty"`
	TargetAudience *string `json:"target_audience,omitempty"`

	Status          string          `json:"status"`
	Progress        int             `json:"progress"`
	VideoDuration   *float64        `json:"video_duration_seconds,omitempty"` // Nullable FLOAT
	AnalysisResults json.RawMessage `json:"analysis_results,omitempty"`       // Nullable JSONB
	ProcessingError *string         `json:"processing_error,omitempty"`       // Nullable TEXT

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
