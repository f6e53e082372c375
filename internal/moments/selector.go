// Package moments ranks transcript segments into scored marketing moments.
// The primary path asks the language-analysis service for a ranked JSON
// array; when the service is unconfigured, unreachable, or returns garbage,
// a deterministic keyword heuristic takes over. The pipeline must keep
// producing clips with zero configured AI access.
package moments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"clipforge/internal/analysis"
	"clipforge/internal/transcript"
)

// ErrNoMoments is returned when even the fallback heuristic finds no
// candidate segments. An empty moment set is never treated as success.
var ErrNoMoments = errors.New("no marketing moments found in transcript")

// Moment is a scored, typed candidate derived from a transcript segment.
// Its fields are exactly what gets copied onto a clip record at creation.
type Moment struct {
	StartTime           float64 `json:"start_time"`
	EndTime             float64 `json:"end_time"`
	Type                string  `json:"type"`
	MarketingScore      int     `json:"marketing_score"`
	ConversionPotential int     `json:"conversion_potential"`
	HookStrength        int     `json:"hook_strength"`
	EmotionalImpact     int     `json:"emotional_impact"`
	WhySelected         string  `json:"why_selected"`
	SuggestedCaption    string  `json:"suggested_caption"`
	TranscriptExcerpt   string  `json:"transcript_excerpt"`
}

// JobContext carries the campaign fields that steer selection.
type JobContext struct {
	Industry       string
	ProductContext string
	TargetAudience string
	TargetFormat   string
	TargetDuration int
	MaxClips       int
}

// Analyzer is the slice of the analysis client the selector needs.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Selector picks the highest-potential moments for a job.
type Selector struct {
	analyzer Analyzer
	log      *logrus.Logger
}

// NewSelector builds a selector. analyzer may be an unconfigured client;
// selection then always uses the fallback heuristic.
func NewSelector(analyzer Analyzer, log *logrus.Logger) *Selector {
	return &Selector{analyzer: analyzer, log: log}
}

// Select returns up to jc.MaxClips moments, highest marketing score first.
func (s *Selector) Select(ctx context.Context, segs []transcript.Segment, jc JobContext) ([]Moment, error) {
	if jc.MaxClips <= 0 {
		jc.MaxClips = 3
	}

	moments, err := s.selectWithAnalysis(ctx, segs, jc)
	if err != nil {
		if errors.Is(err, analysis.ErrNotConfigured) {
			s.log.Info("analysis service not configured, using keyword fallback")
		} else {
			s.log.WithField("error", err.Error()).Warn("analysis service selection failed, using keyword fallback")
		}
		moments = fallbackSelect(segs, jc)
	}

	if len(moments) == 0 {
		return nil, ErrNoMoments
	}
	if len(moments) > jc.MaxClips {
		moments = moments[:jc.MaxClips]
	}
	return moments, nil
}

func (s *Selector) selectWithAnalysis(ctx context.Context, segs []transcript.Segment, jc JobContext) ([]Moment, error) {
	text, err := s.analyzer.Analyze(ctx, buildPrompt(segs, jc))
	if err != nil {
		return nil, err
	}

	arr, err := analysis.ExtractJSONArray(text)
	if err != nil {
		return nil, err
	}

	var parsed []Moment
	if err := json.Unmarshal([]byte(arr), &parsed); err != nil {
		return nil, fmt.Errorf("parse moments: %w", err)
	}

	out := make([]Moment, 0, len(parsed))
	for _, m := range parsed {
		if m.EndTime <= m.StartTime || strings.TrimSpace(m.TranscriptExcerpt) == "" && strings.TrimSpace(m.WhySelected) == "" {
			continue
		}
		if !validMomentType(m.Type) {
			m.Type = "benefit"
		}
		m.MarketingScore = clampScore(m.MarketingScore)
		m.ConversionPotential = clampScore(m.ConversionPotential)
		m.HookStrength = clampScore(m.HookStrength)
		m.EmotionalImpact = clampScore(m.EmotionalImpact)
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, errors.New("analysis returned no usable moments")
	}
	return out, nil
}

func buildPrompt(segs []transcript.Segment, jc JobContext) string {
	var b strings.Builder
	b.WriteString("You select high-conversion marketing moments from a video transcript.\n")
	fmt.Fprintf(&b, "Pick up to %d moments, each roughly %d seconds long, for a %s format ad.\n",
		jc.MaxClips, jc.TargetDuration, jc.TargetFormat)
	if jc.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", jc.Industry)
	}
	if jc.ProductContext != "" {
		fmt.Fprintf(&b, "Product: %s\n", jc.ProductContext)
	}
	if jc.TargetAudience != "" {
		fmt.Fprintf(&b, "Audience: %s\n", jc.TargetAudience)
	}
	b.WriteString("Respond with ONLY a JSON array (no markdown, no prose) of objects with fields: ")
	b.WriteString(`start_time, end_time, type (one of hook|testimonial|benefit|cta|social_proof|urgency), `)
	b.WriteString(`marketing_score, conversion_potential, hook_strength, emotional_impact (integers 0-100), `)
	b.WriteString("why_selected, suggested_caption, transcript_excerpt. Order by marketing_score descending.\n\n")
	b.WriteString("Transcript segments:\n")
	for _, seg := range segs {
		fmt.Fprintf(&b, "[%.1f - %.1f] %s\n", seg.Start, seg.End, seg.Text)
	}
	return b.String()
}

func validMomentType(t string) bool {
	switch t {
	case "hook", "testimonial", "benefit", "cta", "social_proof", "urgency":
		return true
	}
	return false
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
