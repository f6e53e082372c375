// Package transcript converts heterogeneous speech-to-text output into a
// canonical ordered sequence of timed segments. Providers disagree on shape:
// some return chunk lists with timestamp pairs, some explicit segments, some
// only word-level timestamps, and some a bare text blob. Normalize tries
// each known shape in priority order and takes the first that yields at
// least one segment.
package transcript

import (
	"encoding/json"
	"strings"
)

// Segment is one timed piece of transcript text. Segments are chronological
// in source order; Normalize never re-sorts them.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

const (
	// wordGapSeconds closes a word-built segment once a word starts this far
	// after the segment began.
	wordGapSeconds = 10
	// assumedDurationSeconds spans a plain-text transcript with no timing at
	// all. Last-resort only.
	assumedDurationSeconds = 60
)

// matchers are tried in priority order; the first to produce segments wins.
var matchers = []func(json.RawMessage) []Segment{
	matchChunks,
	matchSegments,
	matchWords,
	matchPlainText,
}

// Normalize converts a raw speech-to-text payload into ordered segments.
// It is a pure function: the same payload always yields the same segments.
// An empty result means no recognizable shape was present; callers treat
// that as a fatal transcription failure.
func Normalize(raw json.RawMessage) []Segment {
	if len(raw) == 0 {
		return nil
	}
	for _, match := range matchers {
		if segs := match(raw); len(segs) > 0 {
			return segs
		}
	}
	return nil
}

// matchChunks handles Whisper-style chunk lists: each chunk carries a
// [start, end] timestamp pair and text.
func matchChunks(raw json.RawMessage) []Segment {
	var payload struct {
		Chunks []struct {
			Timestamp []float64 `json:"timestamp"`
			Text      string    `json:"text"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var out []Segment
	for _, c := range payload.Chunks {
		if len(c.Timestamp) < 2 {
			continue
		}
		seg := Segment{Start: c.Timestamp[0], End: c.Timestamp[1], Text: strings.TrimSpace(c.Text)}
		if seg.End <= seg.Start || seg.Text == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// matchSegments handles explicit segment lists, either under a "segments"
// key or as a top-level array.
func matchSegments(raw json.RawMessage) []Segment {
	type rawSegment struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	}

	var list []rawSegment
	var payload struct {
		Segments []rawSegment `json:"segments"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && len(payload.Segments) > 0 {
		list = payload.Segments
	} else if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}

	var out []Segment
	for _, s := range list {
		seg := Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)}
		if seg.End <= seg.Start || seg.Text == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// matchWords handles word-level timestamps with no segment grouping.
// Consecutive words merge into one segment until a word starts more than
// wordGapSeconds after the segment began.
func matchWords(raw json.RawMessage) []Segment {
	var payload struct {
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"words"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Words) == 0 {
		return nil
	}

	var out []Segment
	var cur *Segment
	var parts []string
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(strings.Join(parts, " "))
		if cur.Text != "" && cur.End > cur.Start {
			out = append(out, *cur)
		}
		cur = nil
		parts = nil
	}

	for _, w := range payload.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		if cur != nil && w.Start-cur.Start > wordGapSeconds {
			flush()
		}
		if cur == nil {
			cur = &Segment{Start: w.Start}
		}
		if w.End > cur.End {
			cur.End = w.End
		}
		parts = append(parts, text)
	}
	flush()
	return out
}

// matchPlainText handles a bare transcript string with no timing, either as
// a JSON string or under a "text" key. Produces a single segment over an
// assumed duration.
func matchPlainText(raw json.RawMessage) []Segment {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil
		}
		text = payload.Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []Segment{{Start: 0, End: assumedDurationSeconds, Text: text}}
}
