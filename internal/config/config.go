package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // TRELLIS_DATABASE_URL (required)
	HTTPAddr    string // TRELLIS_HTTP_ADDR (default ":8080")
	NATSURL     string // TRELLIS_NATS_URL (optional, empty = no events)
	AuthToken   string // TRELLIS_AUTH_TOKEN (optional, empty = auth disabled)

	// Export settings
	ExportInterval   time.Duration // TRELLIS_EXPORT_INTERVAL (default 5m; 0 = disabled)
	ExportProjects   string        // TRELLIS_EXPORT_PROJECTS (comma-separated; empty = all)
	ExportS3Bucket   string        // TRELLIS_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // TRELLIS_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // TRELLIS_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // TRELLIS_EXPORT_S3_KEY (default "trellis/export.jsonl")
	ExportDir        string        // TRELLIS_EXPORT_DIR (enables local file export when set)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("TRELLIS_DATABASE_URL"),
		HTTPAddr:         envOrDefault("TRELLIS_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("TRELLIS_NATS_URL"),
		AuthToken:        os.Getenv("TRELLIS_AUTH_TOKEN"),
		ExportProjects:   os.Getenv("TRELLIS_EXPORT_PROJECTS"),
		ExportS3Bucket:   os.Getenv("TRELLIS_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("TRELLIS_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("TRELLIS_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("TRELLIS_EXPORT_S3_KEY", "trellis/export.jsonl"),
		ExportDir:        os.Getenv("TRELLIS_EXPORT_DIR"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TRELLIS_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("TRELLIS_EXPORT_INTERVAL", "5m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("TRELLIS_EXPORT_INTERVAL: %w", err)
		}
		c.ExportInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
