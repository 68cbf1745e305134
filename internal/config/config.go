package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Blob storage connection
	BlobstoreURL    string
	BlobstoreAPIKey string

	// Auth
	ServiceAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Windowing defaults
	WindowSize    int
	WindowOverlap int

	// OCR
	OCRLanguage string
	RenderDPI   int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		BlobstoreURL:    envOr("BLOBSTORE_URL", "http://localhost:8080"),
		BlobstoreAPIKey: os.Getenv("BLOBSTORE_API_KEY"),

		ServiceAPIKey: os.Getenv("DOCMILL_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		WindowSize:    envInt("WINDOW_SIZE", 2000),
		WindowOverlap: envInt("WINDOW_OVERLAP", 200),

		OCRLanguage: envOr("OCR_LANGUAGE", "eng"),
		RenderDPI:   envInt("RENDER_DPI", 300),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 2000
	}
	if cfg.WindowOverlap < 0 || cfg.WindowOverlap >= cfg.WindowSize {
		cfg.WindowOverlap = cfg.WindowSize / 10
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = 300
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BlobstoreAPIKey == "" {
		return fmt.Errorf("BLOBSTORE_API_KEY is required")
	}
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("DOCMILL_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
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
