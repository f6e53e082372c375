package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Budgets holds the wait budget and poll interval for every external async
// call. Each call is independently bounded; exceeding a budget fails only
// that call. Long transcriptions get the largest budget since speech-to-text
// on a full source video dominates pipeline latency.
type Budgets struct {
	TranscribeMaxWait      time.Duration
	TranscribePollInterval time.Duration
	TrimMaxWait            time.Duration
	ThumbnailMaxWait       time.Duration
	CaptionMaxWait         time.Duration
	TaskPollInterval       time.Duration
}

// Config carries all environment-driven settings for the service.
type Config struct {
	Port string

	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string

	TranscriptionURL string
	TranscriptionKey string

	AnalysisURL   string
	AnalysisKey   string
	AnalysisModel string

	TransformURL string
	TransformKey string

	ResolverURL string
	ResolverKey string

	NtfyTopic string

	Budgets Budgets
}

// Load reads configuration from the environment. Missing Supabase
// credentials are a hard error: the service refuses to start rather than
// accept jobs it cannot persist.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               envOr("PORT", "8080"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		StorageBucket:      envOr("STORAGE_BUCKET", "clips"),
		TranscriptionURL:   os.Getenv("TRANSCRIPTION_API_URL"),
		TranscriptionKey:   os.Getenv("TRANSCRIPTION_API_KEY"),
		AnalysisURL:        os.Getenv("ANALYSIS_API_URL"),
		AnalysisKey:        os.Getenv("ANALYSIS_API_KEY"),
		AnalysisModel:      envOr("ANALYSIS_MODEL", "anthropic/claude-3.5-sonnet"),
		TransformURL:       os.Getenv("TRANSFORM_API_URL"),
		TransformKey:       os.Getenv("TRANSFORM_API_KEY"),
		ResolverURL:        os.Getenv("RESOLVER_API_URL"),
		ResolverKey:        os.Getenv("RESOLVER_API_KEY"),
		NtfyTopic:          os.Getenv("NTFY_TOPIC"),
		Budgets: Budgets{
			TranscribeMaxWait:      envSeconds("TRANSCRIBE_MAX_WAIT_SECONDS", 15*time.Minute),
			TranscribePollInterval: envSeconds("TRANSCRIBE_POLL_INTERVAL_SECONDS", 5*time.Second),
			TrimMaxWait:            envSeconds("TRIM_MAX_WAIT_SECONDS", 5*time.Minute),
			ThumbnailMaxWait:       envSeconds("THUMBNAIL_MAX_WAIT_SECONDS", 2*time.Minute),
			CaptionMaxWait:         envSeconds("CAPTION_MAX_WAIT_SECONDS", 3*time.Minute),
			TaskPollInterval:       envSeconds("TASK_POLL_INTERVAL_SECONDS", 3*time.Second),
		},
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	if cfg.TranscriptionURL == "" {
		return nil, fmt.Errorf("TRANSCRIPTION_API_URL must be set")
	}
	if cfg.TransformURL == "" {
		return nil, fmt.Errorf("TRANSFORM_API_URL must be set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
