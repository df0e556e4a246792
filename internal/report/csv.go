package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"zombie-detector/internal/model"
)

// baseColumns is the fixed column prefix of detection CSV reports.
// Passthrough metadata columns follow in sorted order.
var baseColumns = []string{
	"dynatrace_host_id",
	"hostname",
	"Recent_CPU_decrease_criterion",
	"Recent_net_traffic_decrease_criterion",
	"Sustained_Low_CPU_criterion",
	"Excessively_constant_RAM_criterion",
	"Daily_CPU_profile_lost_criterion",
	"report_date",
	"tenant",
	"asset_tag",
	"pending_decommission",
	"criterion_type",
	"criterion_alias",
	"criterion_description",
	"criterion_state",
	"is_zombie",
}

var killedColumns = []string{
	"dynatrace_host_id",
	"hostname",
	"criterion_type",
	"criterion_alias",
	"killed_at",
}

// CSVWriter implements ReportWriter for CSV format.
type CSVWriter struct{}

// NewCSVWriter creates a new CSV report writer.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Format returns the format identifier for this writer.
func (w *CSVWriter) Format() string { return "csv" }

// Extension returns the file extension for this format.
func (w *CSVWriter) Extension() string { return "csv" }

// WriteDetections saves the enriched hosts as a CSV table. Every host
// lands in a row; the column set is the union of the fixed columns and
// all passthrough metadata keys seen in the batch.
func (w *CSVWriter) WriteDetections(result *model.DetectionResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("detection result is nil")
	}

	extraCols := collectExtraColumns(result.Hosts)
	header := append(append([]string{}, baseColumns...), extraCols...)

	rows := make([][]string, 0, len(result.Hosts)+1)
	rows = append(rows, header)
	for _, h := range result.Hosts {
		if h == nil {
			continue
		}
		rows = append(rows, hostRow(h, extraCols))
	}

	return writeCSVFile(outputPath, rows)
}

// WriteKilled saves the killed-registry entries as a CSV table.
func (w *CSVWriter) WriteKilled(summary *model.KilledSummary, outputPath string) error {
	if summary == nil {
		return fmt.Errorf("killed summary is nil")
	}

	rows := make([][]string, 0, len(summary.KilledZombies)+1)
	rows = append(rows, killedColumns)
	for _, e := range summary.KilledZombies {
		if e == nil {
			continue
		}
		rows = append(rows, []string{
			e.DynatraceHostID,
			e.Hostname,
			e.CriterionType,
			e.CriterionAlias,
			e.KilledAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return writeCSVFile(outputPath, rows)
}

// collectExtraColumns returns the sorted union of passthrough metadata
// keys across the batch.
func collectExtraColumns(hosts []*model.EnrichedHost) []string {
	seen := make(map[string]struct{})
	for _, h := range hosts {
		if h == nil {
			continue
		}
		for k := range h.Extra {
			seen[k] = struct{}{}
		}
	}

	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func hostRow(h *model.EnrichedHost, extraCols []string) []string {
	row := []string{
		h.DynatraceHostID,
		h.Hostname,
		strconv.Itoa(int(h.RecentCPUDecrease)),
		strconv.Itoa(int(h.RecentNetTrafficDecrease)),
		strconv.Itoa(int(h.SustainedLowCPU)),
		strconv.Itoa(int(h.ExcessivelyConstantRAM)),
		strconv.Itoa(int(h.DailyCPUProfileLost)),
		h.ReportDate,
		h.Tenant,
		h.AssetTag,
		h.PendingDecommission,
		h.CriterionType,
		h.CriterionAlias,
		h.CriterionDescription,
		strconv.Itoa(h.CriterionState),
		strconv.FormatBool(h.IsZombie),
	}

	for _, col := range extraCols {
		row = append(row, formatExtra(h.Extra[col]))
	}
	return row
}

// formatExtra renders a passthrough value as a cell. Composite values
// fall back to their JSON encoding.
func formatExtra(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

func writeCSVFile(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
