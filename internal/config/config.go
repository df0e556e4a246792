// Package config provides configuration management for the zombie detector.
package config

import "time"

// Config is the root configuration structure for the zombie detector.
type Config struct {
	Detection DetectionConfig `mapstructure:"detection"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Server    ServerConfig    `mapstructure:"server"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

// DetectionConfig contains configurations for classification behavior.
type DetectionConfig struct {
	Concurrency int    `mapstructure:"concurrency" validate:"gte=1,lte=100"`
	StatesPath  string `mapstructure:"states_path"`
}

// TrackingConfig contains configurations for cross-run zombie tracking.
type TrackingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DataDir      string `mapstructure:"data_dir"`
	Backend      string `mapstructure:"backend" validate:"oneof=file bolt"`
	HistoryLimit int    `mapstructure:"history_limit" validate:"gte=1"`
}

// PublisherConfig contains configurations for the NATS event publisher.
type PublisherConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	Name          string        `mapstructure:"name"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ServerConfig contains configurations for the REST API server.
type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ReportConfig contains configurations for report generation.
type ReportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`
	Formats   []string `mapstructure:"formats" validate:"dive,oneof=json csv excel"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}
