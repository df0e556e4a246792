// Package cmd provides CLI commands for the zombie detector.
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zombie-detector/internal/config"
	"zombie-detector/internal/publisher"
	"zombie-detector/internal/service"
	"zombie-detector/internal/tracker"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile  string // Config file path
	logLevel string // Log level
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zombie-detector",
	Short: "Zombie host detection based on pre-computed activity criteria",
	Long: `zombie-detector classifies monitored hosts into zombie categories
from five pre-computed activity criteria and tracks how each host moves
through the zombie lifecycle across detection runs.

A batch of host records (JSON) goes in; every host comes back annotated
with its classification code, alias and description. With tracking
enabled, each run is compared against the previous one to report new,
persisting and killed zombies.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}

// loadConfig loads the configuration file and applies global flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var output io.Writer
	if format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// buildTracker opens the tracking store configured in cfg, or returns
// nil when tracking is disabled.
func buildTracker(cfg *config.Config, logger zerolog.Logger) (*tracker.Tracker, error) {
	if !cfg.Tracking.Enabled {
		return nil, nil
	}

	var store tracker.Store
	var err error
	switch cfg.Tracking.Backend {
	case "bolt":
		store, err = tracker.NewBoltStore(cfg.Tracking.DataDir, logger)
	default:
		store, err = tracker.NewFileStore(cfg.Tracking.DataDir, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open tracking store: %w", err)
	}

	return tracker.New(store, logger, tracker.WithHistoryLimit(cfg.Tracking.HistoryLimit)), nil
}

// buildProcessor assembles the detection pipeline from configuration.
// The returned cleanup function releases the tracker and publisher.
func buildProcessor(
	cfg *config.Config,
	states map[string]int,
	withTracking, withPublishing bool,
	logger zerolog.Logger,
) (*service.Processor, *tracker.Tracker, func(), error) {
	var tr *tracker.Tracker
	var pub *publisher.Publisher

	cleanup := func() {
		if tr != nil {
			if err := tr.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close tracking store")
			}
		}
		if pub != nil {
			if err := pub.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to drain publisher")
			}
		}
	}

	opts := []service.ProcessorOption{
		service.WithConcurrency(cfg.Detection.Concurrency),
		service.WithVersion(Version),
	}

	if withTracking {
		var err error
		tr, err = buildTracker(cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if tr != nil {
			opts = append(opts, service.WithTracker(tr))
		}
	}

	if withPublishing && cfg.Publisher.Enabled {
		// An unreachable bus degrades to no publishing; it never blocks
		// classification or tracking.
		p, err := publisher.New(cfg.Publisher, Version, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("message bus unavailable, continuing without publishing")
		} else {
			pub = p
			opts = append(opts, service.WithPublisher(pub))
		}
	}

	return service.NewProcessor(states, logger, opts...), tr, cleanup, nil
}

// reportTimestamp names output files uniquely per run.
func reportTimestamp() string {
	return time.Now().Format("20060102_150405")
}
