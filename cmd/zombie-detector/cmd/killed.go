package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"zombie-detector/internal/client/detector"
	"zombie-detector/internal/model"
	"zombie-detector/internal/report"
)

// killed command flags
var (
	killedSinceHours int
	killedOutputDir  string
	killedFormats    []string
	killedServerURL  string
)

// killedCmd lists the killed registry for a trailing window.
var killedCmd = &cobra.Command{
	Use:   "killed",
	Short: "List zombies killed within a time window",
	Long: `List the hosts that left the zombie set within the trailing window,
newest first, together with their last detection.

Examples:

  # Killed zombies of the last 24 hours (default)
  zombie-detector killed

  # Last week, written as CSV
  zombie-detector killed --since 168 -o ./reports -f csv

  # Query a running API server
  zombie-detector killed --server http://localhost:8000`,
	RunE: runKilled,
}

func init() {
	rootCmd.AddCommand(killedCmd)

	killedCmd.Flags().IntVar(&killedSinceHours, "since", 24, "window size in hours")
	killedCmd.Flags().StringVarP(&killedOutputDir, "output", "o", "", "write a report to this directory instead of stdout")
	killedCmd.Flags().StringSliceVarP(&killedFormats, "format", "f", nil, "report formats (json,csv,excel)")
	killedCmd.Flags().StringVar(&killedServerURL, "server", "", "query a running API server")
}

func runKilled(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	var summary *model.KilledSummary
	if killedServerURL != "" {
		client := detector.NewClient(killedServerURL, &cfg.HTTP.Retry, logger)
		summary, err = client.KilledSince(cmd.Context(), killedSinceHours)
		if err != nil {
			return err
		}
	} else {
		tr, err := buildTracker(cfg, logger)
		if err != nil {
			return err
		}
		if tr == nil {
			return fmt.Errorf("tracking is disabled; enable it or use --server")
		}
		defer tr.Close()

		entries, err := tr.KilledSince(killedSinceHours)
		if err != nil {
			return err
		}
		summary = model.NewKilledSummary(entries, killedSinceHours)
	}

	if killedOutputDir != "" {
		formats := killedFormats
		if len(formats) == 0 {
			formats = cfg.Report.Formats
		}
		registry := report.NewRegistry()
		ts := reportTimestamp()
		for _, format := range formats {
			writer, err := registry.Get(format)
			if err != nil {
				return err
			}
			path := filepath.Join(killedOutputDir, fmt.Sprintf("killed_zombies_%s.%s", ts, writer.Extension()))
			if err := writer.WriteKilled(summary, path); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "report written: %s\n", path)
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
