package mediatransform

// CaptionStyle holds the burn-in parameters for one caption preset.
type CaptionStyle struct {
	Name         string
	FontFamily   string
	FontSize     int
	PrimaryColor string
	OutlineColor string
	StrokeWidth  int
	Position     string
}

// DefaultCaptionStyle is used when a job names no style or an unknown one.
const DefaultCaptionStyle = "bold"

var captionStyles = map[string]CaptionStyle{
	"bold": {
		Name:         "bold",
		FontFamily:   "Montserrat",
		FontSize:     64,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#000000",
		StrokeWidth:  4,
		Position:     "bottom",
	},
	"clean": {
		Name:         "clean",
		FontFamily:   "Inter",
		FontSize:     48,
		PrimaryColor: "#FFFFFF",
		OutlineColor: "#1A1A1A",
		StrokeWidth:  2,
		Position:     "bottom",
	},
	"neon": {
		Name:         "neon",
		FontFamily:   "Bebas Neue",
		FontSize:     72,
		PrimaryColor: "#39FF14",
		OutlineColor: "#0D0D0D",
		StrokeWidth:  5,
		Position:     "center",
	},
	"subtle": {
		Name:         "subtle",
		FontFamily:   "Roboto",
		FontSize:     40,
		PrimaryColor: "#F5F5F5",
		OutlineColor: "#333333",
		StrokeWidth:  1,
		Position:     "bottom",
	},
}

// StyleByName resolves a caption style preset, falling back to the default
// for empty or unknown names.
func StyleByName(name string) CaptionStyle {
	if s, ok := captionStyles[name]; ok {
		return s
	}
	return captionStyles[DefaultCaptionStyle]
}
