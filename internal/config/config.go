// Package config loads server settings from CASEGRAPH_* environment
// variables, optionally layered over a TOML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DatabaseURL string `toml:"database_url"` // CASEGRAPH_DATABASE_URL (required)
	GRPCAddr    string `toml:"grpc_addr"`    // CASEGRAPH_GRPC_ADDR (default ":9090")
	HTTPAddr    string `toml:"http_addr"`    // CASEGRAPH_HTTP_ADDR (default ":8080")
	NATSURL     string `toml:"nats_url"`     // CASEGRAPH_NATS_URL (optional, empty = no events)
	AuthToken   string `toml:"auth_token"`   // CASEGRAPH_AUTH_TOKEN (optional, empty = auth disabled)

	LayoutCacheSize int      `toml:"layout_cache_size"` // CASEGRAPH_LAYOUT_CACHE_SIZE (default 256)
	ViewIdleTimeout Duration `toml:"view_idle_timeout"` // CASEGRAPH_VIEW_IDLE_TIMEOUT (default 30m)

	Export Export `toml:"export"`
}

// Export configures periodic layout snapshots.
type Export struct {
	Interval   Duration `toml:"interval"`    // CASEGRAPH_EXPORT_INTERVAL (default 0 = disabled)
	S3Bucket   string   `toml:"s3_bucket"`   // CASEGRAPH_EXPORT_S3_BUCKET (enables S3 when set)
	S3Endpoint string   `toml:"s3_endpoint"` // CASEGRAPH_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	S3Region   string   `toml:"s3_region"`   // CASEGRAPH_EXPORT_S3_REGION (default "us-east-1")
	S3Key      string   `toml:"s3_key"`      // CASEGRAPH_EXPORT_S3_KEY (default "casegraph/layouts.jsonl")
	File       string   `toml:"file"`        // CASEGRAPH_EXPORT_FILE (enables a local file when set)
}

// Enabled reports whether snapshots should be scheduled.
func (e Export) Enabled() bool {
	return e.Interval.Duration() > 0 && (e.S3Bucket != "" || e.File != "")
}

// Duration is a time.Duration written as a string such as "30m" in TOML.
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func defaults() *Config {
	return &Config{
		GRPCAddr:        ":9090",
		HTTPAddr:        ":8080",
		LayoutCacheSize: 256,
		ViewIdleTimeout: Duration(30 * time.Minute),
		Export: Export{
			S3Region: "us-east-1",
			S3Key:    "casegraph/layouts.jsonl",
		},
	}
}

// Load builds the configuration from defaults, the TOML file named by
// CASEGRAPH_CONFIG if set, and finally the environment.
func Load() (*Config, error) {
	c := defaults()
	if path := os.Getenv("CASEGRAPH_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	c.DatabaseURL = envOrDefault("CASEGRAPH_DATABASE_URL", c.DatabaseURL)
	c.GRPCAddr = envOrDefault("CASEGRAPH_GRPC_ADDR", c.GRPCAddr)
	c.HTTPAddr = envOrDefault("CASEGRAPH_HTTP_ADDR", c.HTTPAddr)
	c.NATSURL = envOrDefault("CASEGRAPH_NATS_URL", c.NATSURL)
	c.AuthToken = envOrDefault("CASEGRAPH_AUTH_TOKEN", c.AuthToken)
	c.Export.S3Bucket = envOrDefault("CASEGRAPH_EXPORT_S3_BUCKET", c.Export.S3Bucket)
	c.Export.S3Endpoint = envOrDefault("CASEGRAPH_EXPORT_S3_ENDPOINT", c.Export.S3Endpoint)
	c.Export.S3Region = envOrDefault("CASEGRAPH_EXPORT_S3_REGION", c.Export.S3Region)
	c.Export.S3Key = envOrDefault("CASEGRAPH_EXPORT_S3_KEY", c.Export.S3Key)
	c.Export.File = envOrDefault("CASEGRAPH_EXPORT_FILE", c.Export.File)

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("CASEGRAPH_DATABASE_URL is required")
	}

	if v := os.Getenv("CASEGRAPH_LAYOUT_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("CASEGRAPH_LAYOUT_CACHE_SIZE: %w", err)
		}
		c.LayoutCacheSize = n
	}
	if c.LayoutCacheSize <= 0 {
		return nil, fmt.Errorf("layout cache size must be positive, got %d", c.LayoutCacheSize)
	}

	for _, d := range []struct {
		key string
		dst *Duration
	}{
		{"CASEGRAPH_VIEW_IDLE_TIMEOUT", &c.ViewIdleTimeout},
		{"CASEGRAPH_EXPORT_INTERVAL", &c.Export.Interval},
	} {
		if v := os.Getenv(d.key); v != "" {
			if err := d.dst.UnmarshalText([]byte(v)); err != nil {
				return nil, fmt.Errorf("%s: %w", d.key, err)
			}
		}
	}
	if c.ViewIdleTimeout <= 0 {
		return nil, fmt.Errorf("view idle timeout must be positive, got %s", c.ViewIdleTimeout.Duration())
	}
	if c.Export.Interval < 0 {
		return nil, fmt.Errorf("export interval must not be negative, got %s", c.Export.Interval.Duration())
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
