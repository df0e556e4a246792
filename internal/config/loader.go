// Package config provides configuration management for the zombie detector.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment
// variables. Environment variables take precedence over file values.
// Environment variable format: ZOMBIE_<SECTION>_<KEY> (e.g.,
// ZOMBIE_PUBLISHER_URL). A missing config file is not an error: the
// detector runs on defaults plus environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ZOMBIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to access config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Detection defaults
	v.SetDefault("detection.concurrency", 20)
	v.SetDefault("detection.states_path", "")

	// Tracking defaults
	v.SetDefault("tracking.enabled", true)
	v.SetDefault("tracking.data_dir", "./data")
	v.SetDefault("tracking.backend", "file")
	v.SetDefault("tracking.history_limit", 1000)

	// Publisher defaults
	v.SetDefault("publisher.enabled", false)
	v.SetDefault("publisher.url", "nats://127.0.0.1:4222")
	v.SetDefault("publisher.subject_prefix", "zombie")
	v.SetDefault("publisher.name", "zombie-detector")
	v.SetDefault("publisher.timeout", 5*time.Second)

	// Server defaults
	v.SetDefault("server.listen", ":8000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{"json"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)
}
