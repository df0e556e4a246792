package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Detection.Concurrency != 20 {
		t.Errorf("detection.concurrency = %d, want 20", cfg.Detection.Concurrency)
	}
	if !cfg.Tracking.Enabled || cfg.Tracking.Backend != "file" {
		t.Errorf("tracking defaults = %+v", cfg.Tracking)
	}
	if cfg.Tracking.HistoryLimit != 1000 {
		t.Errorf("tracking.history_limit = %d, want 1000", cfg.Tracking.HistoryLimit)
	}
	if cfg.Publisher.Enabled {
		t.Error("publisher should default to disabled")
	}
	if cfg.Server.Listen != ":8000" {
		t.Errorf("server.listen = %q, want :8000", cfg.Server.Listen)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.HTTP.Retry.MaxRetries != 3 || cfg.HTTP.Retry.BaseDelay != time.Second {
		t.Errorf("http.retry defaults = %+v", cfg.HTTP.Retry)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Detection.Concurrency != 20 {
		t.Errorf("detection.concurrency = %d, want default", cfg.Detection.Concurrency)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
detection:
  concurrency: 5
tracking:
  backend: bolt
  data_dir: /var/lib/zombie
publisher:
  enabled: true
  url: nats://nats.internal:4222
  subject_prefix: prod.zombie
logging:
  level: debug
  format: console
report:
  formats: [json, excel]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Detection.Concurrency != 5 {
		t.Errorf("detection.concurrency = %d, want 5", cfg.Detection.Concurrency)
	}
	if cfg.Tracking.Backend != "bolt" || cfg.Tracking.DataDir != "/var/lib/zombie" {
		t.Errorf("tracking = %+v", cfg.Tracking)
	}
	if !cfg.Publisher.Enabled || cfg.Publisher.SubjectPrefix != "prod.zombie" {
		t.Errorf("publisher = %+v", cfg.Publisher)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if len(cfg.Report.Formats) != 2 {
		t.Errorf("report.formats = %v", cfg.Report.Formats)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ZOMBIE_LOGGING_LEVEL", "warn")
	t.Setenv("ZOMBIE_TRACKING_BACKEND", "bolt")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Tracking.Backend != "bolt" {
		t.Errorf("tracking.backend = %q, want bolt", cfg.Tracking.Backend)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad backend", "tracking:\n  backend: redis\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"bad report format", "report:\n  formats: [pdf]\n"},
		{"concurrency too high", "detection:\n  concurrency: 500\n"},
		{"publisher enabled without url", "publisher:\n  enabled: true\n  url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfigFile(t, tt.content)); err == nil {
				t.Error("Load succeeded, want validation error")
			}
		})
	}
}
