package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zombie-detector/internal/client/detector"
	"zombie-detector/internal/config"
	"zombie-detector/internal/model"
	"zombie-detector/internal/report"
)

// detect command flags
var (
	detectStatesPath string
	detectOutputDir  string
	detectFormats    []string
	detectZombies    bool
	detectSummary    bool
	detectNoTracking bool
	detectNoPublish  bool
	detectServerURL  string
)

// detectCmd classifies a host batch read from a file or stdin.
var detectCmd = &cobra.Command{
	Use:   "detect [hosts.json]",
	Short: "Classify a batch of host records",
	Long: `Read a JSON array of host records, classify every host and print the
enriched batch. With tracking enabled the run is also compared against
the previous snapshot.

The input file defaults to stdin. Examples:

  # Classify hosts from a file, tracking enabled
  zombie-detector detect hosts.json

  # Pipe from another tool, print zombies only
  curl -s $PIPELINE/hosts | zombie-detector detect --zombies-only

  # One-shot classification without touching tracking state
  zombie-detector detect hosts.json --no-tracking

  # Write reports instead of printing (formats from config or -f)
  zombie-detector detect hosts.json -o ./reports -f json,excel

  # Delegate to a running API server
  zombie-detector detect hosts.json --server http://localhost:8000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectStatesPath, "states", "", "state policy file (JSON or YAML)")
	detectCmd.Flags().StringVarP(&detectOutputDir, "output", "o", "", "write reports to this directory instead of stdout")
	detectCmd.Flags().StringSliceVarP(&detectFormats, "format", "f", nil, "report formats (json,csv,excel)")
	detectCmd.Flags().BoolVar(&detectZombies, "zombies-only", false, "print only hosts classified as zombies")
	detectCmd.Flags().BoolVar(&detectSummary, "summary", false, "print the batch summary instead of host records")
	detectCmd.Flags().BoolVar(&detectNoTracking, "no-tracking", false, "skip cross-run tracking for this batch")
	detectCmd.Flags().BoolVar(&detectNoPublish, "no-publish", false, "skip event publishing for this batch")
	detectCmd.Flags().StringVar(&detectServerURL, "server", "", "delegate detection to a running API server")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	hosts, err := readHostBatch(args)
	if err != nil {
		return err
	}

	var result *model.DetectionResult
	if detectServerURL != "" {
		client := detector.NewClient(detectServerURL, &cfg.HTTP.Retry, logger)
		result, err = client.Detect(cmd.Context(), hosts)
		if err != nil {
			return fmt.Errorf("remote detection failed: %w", err)
		}
	} else {
		result, err = runLocalDetection(cmd.Context(), cfg, hosts, logger)
		if err != nil {
			return err
		}
	}

	if detectOutputDir != "" {
		return writeReports(cfg, result)
	}
	return printDetection(result)
}

// readHostBatch reads and validates the input host records. The batch
// is rejected as a whole when any record misses required fields.
func readHostBatch(args []string) ([]*model.HostRecord, error) {
	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var rawHosts []json.RawMessage
	if err := json.NewDecoder(in).Decode(&rawHosts); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of host records: %w", err)
	}
	if len(rawHosts) == 0 {
		return nil, fmt.Errorf("host list is empty")
	}

	var invalid []int
	for i, raw := range rawHosts {
		if missing := model.MissingHostFields(raw); len(missing) > 0 {
			invalid = append(invalid, i)
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("host records at indices %v are missing required fields %v",
			invalid, model.RequiredHostFields)
	}

	hosts := make([]*model.HostRecord, len(rawHosts))
	for i, raw := range rawHosts {
		var h model.HostRecord
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("failed to decode host record %d: %w", i, err)
		}
		hosts[i] = &h
	}
	return hosts, nil
}

func runLocalDetection(ctx context.Context, cfg *config.Config, hosts []*model.HostRecord, logger zerolog.Logger) (*model.DetectionResult, error) {
	statesPath := detectStatesPath
	if statesPath == "" {
		statesPath = cfg.Detection.StatesPath
	}
	states, err := config.LoadStates(statesPath)
	if err != nil {
		return nil, err
	}

	processor, _, cleanup, err := buildProcessor(cfg, states, !detectNoTracking, !detectNoPublish, logger)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := processor.Process(ctx, hosts)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	return result, nil
}

// printDetection writes the requested view of the result to stdout.
func printDetection(result *model.DetectionResult) error {
	var payload any
	switch {
	case detectSummary:
		payload = map[string]any{
			"summary":  model.NewDetectionSummary(result.Hosts),
			"tracking": result.Tracking,
		}
	case detectZombies:
		payload = &model.DetectionResult{
			Hosts:    model.FilterZombies(result.Hosts),
			Tracking: result.Tracking,
		}
	default:
		payload = result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeReports renders the result in every requested format.
func writeReports(cfg *config.Config, result *model.DetectionResult) error {
	formats := detectFormats
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
		path := filepath.Join(detectOutputDir, fmt.Sprintf("zombie_report_%s.%s", ts, writer.Extension()))
		if err := writer.WriteDetections(result, path); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report written: %s\n", path)
	}
	return nil
}
