package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Rebuilds
	Debounce time.Duration

	// Session state
	SessionTTL time.Duration

	// Document limits
	MaxDocumentBytes int64

	// Live state
	TraceVisible  bool
	MarkLines     bool
	MarkerKindRaw bool

	// Format switches
	TasklistUseHeaders bool
	SofistikInBlock    bool

	// Display preferences file
	DisplayFile string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("DOCNAV_API_KEY"),

		Debounce: envDuration("DEBOUNCE", 300*time.Millisecond),

		SessionTTL: envDuration("SESSION_TTL", 1*time.Hour),

		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", 10485760), // 10MB

		TraceVisible:  envBool("TRACE_VISIBLE", true),
		MarkLines:     envBool("MARK_LINES", false),
		MarkerKindRaw: envBool("MARKER_KIND_RAW", false),

		TasklistUseHeaders: envBool("TASKLIST_USE_HEADERS", true),
		SofistikInBlock:    envBool("SOFISTIK_IN_BLOCK", false),

		DisplayFile: os.Getenv("DOCNAV_DISPLAY_FILE"),
	}

	if cfg.Debounce < 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 10485760
	}

	return cfg
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCNAV_API_KEY is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
