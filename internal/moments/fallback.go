package moments

import (
	"sort"
	"strings"

	"clipforge/internal/transcript"
)

// hookWindowSeconds bounds how late in the video a segment can still be
// classified as a hook. Openers past the first minute are not hooks.
const hookWindowSeconds = 60

// Keyword sets per moment type. Matching is case-insensitive substring
// matching over the segment text.
var keywordSets = map[string][]string{
	"hook": {
		"secret", "discover", "what if", "imagine", "did you know",
		"the truth", "nobody tells", "stop scrolling", "wait until",
	},
	"testimonial": {
		"i used", "changed my", "i was skeptical", "before i found",
		"my experience", "i couldn't believe", "i love this", "it worked for me",
	},
	"benefit": {
		"you get", "helps you", "so you can", "save time", "save money",
		"boost", "improve", "results", "faster", "easier",
	},
	"cta": {
		"click", "sign up", "buy now", "order", "get started", "link",
		"visit", "subscribe", "download", "try it",
	},
	"social_proof": {
		"customers", "thousands of", "five star", "reviews", "trusted by",
		"people are", "everyone is", "join the",
	},
	"urgency": {
		"right now", "today only", "limited", "hurry", "don't wait",
		"before it's gone", "last chance", "ends soon", "now",
	},
}

// classifyPriority is the fixed order in which keyword sets are tried.
// Hook is only eligible inside the opening window.
var classifyPriority = []string{"hook", "testimonial", "cta", "social_proof", "urgency", "benefit"}

// Base score quadruples per type: marketing, conversion, hook, emotional.
// A hook moment scores highest on hook strength, a cta on conversion
// potential, and so on.
var baseScores = map[string][4]int{
	"hook":         {85, 75, 92, 80},
	"testimonial":  {80, 82, 70, 85},
	"benefit":      {74, 78, 64, 70},
	"cta":          {78, 90, 68, 72},
	"social_proof": {77, 80, 66, 78},
	"urgency":      {76, 84, 72, 75},
}

// fallbackSelect is the deterministic keyword-driven selector used when the
// analysis service cannot. Segments matching no keyword set are skipped
// entirely rather than padded with synthetic moments.
func fallbackSelect(segs []transcript.Segment, jc JobContext) []Moment {
	targetDur := float64(jc.TargetDuration)
	if targetDur <= 0 {
		targetDur = 30
	}

	var out []Moment
	for _, seg := range segs {
		momentType, ok := classify(seg.Text, seg.Start)
		if !ok {
			continue
		}

		base := baseScores[momentType]
		jitter := scoreJitter(seg.Text)

		segDur := seg.End - seg.Start
		end := seg.Start + min(targetDur, segDur+15)
		if limit := seg.End + 10; end > limit {
			end = limit
		}
		if end <= seg.Start {
			continue
		}

		out = append(out, Moment{
			StartTime:           seg.Start,
			EndTime:             end,
			Type:                momentType,
			MarketingScore:      clampScore(base[0] + jitter),
			ConversionPotential: clampScore(base[1] + jitter),
			HookStrength:        clampScore(base[2] + jitter),
			EmotionalImpact:     clampScore(base[3] + jitter),
			WhySelected:         rationaleFor(momentType),
			SuggestedCaption:    captionFrom(seg.Text),
			TranscriptExcerpt:   seg.Text,
		})
	}

	// Highest marketing score first; stable so equal scores keep
	// chronological order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MarketingScore > out[j].MarketingScore
	})
	if len(out) > jc.MaxClips {
		out = out[:jc.MaxClips]
	}
	return out
}

// classify returns the moment type for a segment, trying keyword sets in
// fixed priority order. False means no set matched and the segment is
// excluded from candidacy.
func classify(text string, start float64) (string, bool) {
	lower := strings.ToLower(text)
	for _, momentType := range classifyPriority {
		if momentType == "hook" && start >= hookWindowSeconds {
			continue
		}
		for _, kw := range keywordSets[momentType] {
			if strings.Contains(lower, kw) {
				return momentType, true
			}
		}
	}
	return "", false
}

// scoreJitter derives a small deterministic offset in [-2, 2] from the
// segment text so equal-typed moments do not all tie.
func scoreJitter(text string) int {
	sum := 0
	for _, b := range []byte(text) {
		sum += int(b)
	}
	return sum%5 - 2
}

func rationaleFor(momentType string) string {
	switch momentType {
	case "hook":
		return "Strong opening hook that grabs attention in the first minute"
	case "testimonial":
		return "First-person testimonial language builds trust"
	case "cta":
		return "Direct call to action drives immediate conversion"
	case "social_proof":
		return "Social proof signals reduce purchase hesitation"
	case "urgency":
		return "Urgency language pushes viewers to act now"
	default:
		return "Clear benefit statement communicates product value"
	}
}

// captionFrom trims the segment text into a short suggested caption.
func captionFrom(text string) string {
	text = strings.TrimSpace(text)
	const maxLen = 80
	if len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
