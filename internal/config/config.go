package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Investec  InvestecConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Snapshot  SnapshotConfig
}

type InvestecConfig struct {
	ClientID     string
	ClientSecret string
	APIKey       string
	Host         string
	Timeout      time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
}

type SnapshotConfig struct {
	Workers int
}

var defaults = map[string]any{
	"INVESTEC_HOST":          "https://openapi.investec.com",
	"INVESTEC_TIMEOUT":       "30s",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "text",
	"OTEL_ENABLED":           false,
	"OTEL_SERVICE_NAME":      "pbcli",
	"OTEL_EXPORTER_ENDPOINT": "localhost:4317",
	"SNAPSHOT_WORKERS":       4,
}

var keys = []string{
	"INVESTEC_CLIENT_ID",
	"INVESTEC_CLIENT_SECRET",
	"INVESTEC_API_KEY",
	"INVESTEC_HOST",
	"INVESTEC_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"OTEL_ENABLED",
	"OTEL_SERVICE_NAME",
	"OTEL_EXPORTER_ENDPOINT",
	"SNAPSHOT_WORKERS",
}

// Load reads an optional .env file from path (skipped when path is empty),
// then environment variables, which take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.AddConfigPath(path)
		v.SetConfigName(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
			}
		}
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("INVESTEC_TIMEOUT")))
	if err != nil {
		return nil, fmt.Errorf("invalid INVESTEC_TIMEOUT: %w", err)
	}

	workers, err := strconv.Atoi(strings.TrimSpace(v.GetString("SNAPSHOT_WORKERS")))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_WORKERS: %w", err)
	}

	otelEnabled, err := parseBool(v.GetString("OTEL_ENABLED"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_ENABLED: %w", err)
	}

	cfg := &Config{
		Investec: InvestecConfig{
			ClientID:     strings.TrimSpace(v.GetString("INVESTEC_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(v.GetString("INVESTEC_CLIENT_SECRET")),
			APIKey:       strings.TrimSpace(v.GetString("INVESTEC_API_KEY")),
			Host:         strings.TrimRight(strings.TrimSpace(v.GetString("INVESTEC_HOST")), "/"),
			Timeout:      timeout,
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		},
		Telemetry: TelemetryConfig{
			Enabled:      otelEnabled,
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_ENDPOINT"),
		},
		Snapshot: SnapshotConfig{
			Workers: workers,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Investec.ClientID == "" {
		return fmt.Errorf("INVESTEC_CLIENT_ID is required")
	}
	if c.Investec.ClientSecret == "" {
		return fmt.Errorf("INVESTEC_CLIENT_SECRET is required")
	}
	if c.Investec.APIKey == "" {
		return fmt.Errorf("INVESTEC_API_KEY is required")
	}

	host, err := url.Parse(c.Investec.Host)
	if err != nil || host.Scheme == "" || host.Host == "" {
		return fmt.Errorf("INVESTEC_HOST must be an absolute URL, got %q", c.Investec.Host)
	}
	if c.Investec.Timeout <= 0 {
		return fmt.Errorf("INVESTEC_TIMEOUT must be positive, got %s", c.Investec.Timeout)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}

	if c.Snapshot.Workers < 1 {
		return fmt.Errorf("SNAPSHOT_WORKERS must be at least 1, got %d", c.Snapshot.Workers)
	}
	return nil
}

// parseBool accepts true, false, 1, 0, yes, no (case-insensitive)
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no", "":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognised boolean %q", value)
	}
}
