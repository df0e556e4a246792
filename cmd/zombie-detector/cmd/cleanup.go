package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zombie-detector/internal/client/detector"
)

// cleanup command flags
var (
	cleanupDays      int
	cleanupServerURL string
)

// cleanupCmd prunes old tracking state.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove tracking records older than the retention window",
	Long: `Drop history entries and killed-registry records older than the
retention window. The current snapshot is never touched.

Examples:

  zombie-detector cleanup --days 30
  zombie-detector cleanup --days 7 --server http://localhost:8000`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "days of tracking state to keep")
	cleanupCmd.Flags().StringVar(&cleanupServerURL, "server", "", "run the cleanup on a running API server")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if cleanupDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	var payload any
	if cleanupServerURL != "" {
		client := detector.NewClient(cleanupServerURL, &cfg.HTTP.Retry, logger)
		payload, err = client.Cleanup(cmd.Context(), cleanupDays)
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

		result, err := tr.Cleanup(cleanupDays)
		if err != nil {
			return err
		}
		payload = map[string]any{
			"days_to_keep":    cleanupDays,
			"history_removed": result.HistoryRemoved,
			"killed_removed":  result.KilledRemoved,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
