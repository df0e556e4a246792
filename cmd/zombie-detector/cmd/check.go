package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zombie-detector/internal/client/detector"
	"zombie-detector/internal/tracker"
)

// check command flags
var (
	checkLifecycle bool
	checkServerURL string
)

// checkCmd inspects the tracking state of one host id.
var checkCmd = &cobra.Command{
	Use:   "check <zombie-id>",
	Short: "Check whether a host was killed, or show its lifecycle",
	Long: `Check the killed registry for one host id. With --lifecycle the full
detection history of the host is reconstructed instead.

Examples:

  zombie-detector check HOST-42
  zombie-detector check HOST-42 --lifecycle
  zombie-detector check HOST-42 --server http://localhost:8000`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkLifecycle, "lifecycle", false, "show the full lifecycle instead of the killed check")
	checkCmd.Flags().StringVar(&checkServerURL, "server", "", "query a running API server")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	zombieID := args[0]

	var payload any
	if checkServerURL != "" {
		client := detector.NewClient(checkServerURL, &cfg.HTTP.Retry, logger)
		if checkLifecycle {
			payload, err = client.Lifecycle(cmd.Context(), zombieID)
		} else {
			payload, err = client.CheckKilled(cmd.Context(), zombieID)
		}
		if err != nil {
			return err
		}
	} else {
		var tr *tracker.Tracker
		tr, err = buildTracker(cfg, logger)
		if err != nil {
			return err
		}
		if tr == nil {
			return fmt.Errorf("tracking is disabled; enable it or use --server")
		}
		defer tr.Close()

		if checkLifecycle {
			payload, err = tr.Lifecycle(zombieID)
			if err != nil {
				return err
			}
		} else {
			entry, err := tr.IsKilled(zombieID)
			if err != nil {
				return err
			}
			payload = map[string]any{
				"zombie_id":   zombieID,
				"is_killed":   entry != nil,
				"killed_info": entry,
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
