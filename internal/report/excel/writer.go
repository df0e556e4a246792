// Package excel provides Excel report generation for detection results.
// It implements the report.ReportWriter interface to generate .xlsx
// files with the classified host batch and the killed registry.
package excel

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"zombie-detector/internal/model"
)

const (
	sheetDetections = "Detections"
	sheetSummary    = "Summary"
	sheetKilled     = "Killed Zombies"

	defaultSheet = "Sheet1"

	// Colors (RGB without #)
	colorHeaderBg = "4472C4"
	colorHeaderFg = "FFFFFF"
	colorZombieBg = "FFC7CE"
	colorZombieFg = "9C0006"

	defaultColWidth = 18.0
	wideColWidth    = 40.0
)

var detectionHeader = []string{
	"Host ID",
	"Hostname",
	"Criterion Type",
	"Criterion Alias",
	"Criterion Description",
	"State",
	"Zombie",
	"Tenant",
	"Report Date",
}

var killedHeader = []string{
	"Host ID",
	"Hostname",
	"Criterion Type",
	"Criterion Alias",
	"Killed At",
}

// Writer implements report.ReportWriter for Excel format.
type Writer struct{}

// NewWriter creates a new Excel report writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string { return "excel" }

// Extension returns the file extension for this format.
func (w *Writer) Extension() string { return "xlsx" }

// WriteDetections generates an Excel report with a summary sheet and
// one row per classified host.
func (w *Writer) WriteDetections(result *model.DetectionResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("detection result is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummarySheet(f, result); err != nil {
		return err
	}
	if err := w.writeDetectionSheet(f, result.Hosts); err != nil {
		return err
	}

	f.DeleteSheet(defaultSheet)
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	return w.save(f, outputPath)
}

// WriteKilled generates an Excel report of the killed registry.
func (w *Writer) WriteKilled(summary *model.KilledSummary, outputPath string) error {
	if summary == nil {
		return fmt.Errorf("killed summary is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheetKilled); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := w.headerStyle(f)
	if err != nil {
		return err
	}
	if err := w.writeRowStrings(f, sheetKilled, 1, killedHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetKilled, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for _, e := range summary.KilledZombies {
		if e == nil {
			continue
		}
		cells := []any{
			e.DynatraceHostID,
			e.Hostname,
			e.CriterionType,
			e.CriterionAlias,
			e.KilledAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.writeRow(f, sheetKilled, row, cells); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(sheetKilled, "A", "E", defaultColWidth)
	f.DeleteSheet(defaultSheet)

	return w.save(f, outputPath)
}

func (w *Writer) writeSummarySheet(f *excelize.File, result *model.DetectionResult) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	summary := model.NewDetectionSummary(result.Hosts)
	rows := [][]any{
		{"Total Hosts", summary.TotalHosts},
		{"Zombie Hosts", summary.ZombieHosts},
		{"Non-Zombie Hosts", summary.NonZombieHosts},
		{"Zombie Percentage", summary.ZombiePercentage},
	}
	if result.Tracking != nil {
		rows = append(rows,
			[]any{"New Zombies", result.Tracking.Stats.NewZombies},
			[]any{"Persisting Zombies", result.Tracking.Stats.PersistingZombies},
			[]any{"Killed Zombies", result.Tracking.Stats.KilledZombies},
		)
	}

	for i, row := range rows {
		if err := w.writeRow(f, sheetSummary, i+1, row); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetSummary, "A", "A", wideColWidth)
	f.SetColWidth(sheetSummary, "B", "B", defaultColWidth)
	return nil
}

func (w *Writer) writeDetectionSheet(f *excelize.File, hosts []*model.EnrichedHost) error {
	if _, err := f.NewSheet(sheetDetections); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := w.headerStyle(f)
	if err != nil {
		return err
	}
	zombieStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{colorZombieBg}, Pattern: 1},
		Font: &excelize.Font{Color: colorZombieFg},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := w.writeRowStrings(f, sheetDetections, 1, detectionHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetDetections, "A1", "I1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for _, h := range hosts {
		if h == nil {
			continue
		}
		cells := []any{
			h.DynatraceHostID,
			h.Hostname,
			h.CriterionType,
			h.CriterionAlias,
			h.CriterionDescription,
			h.CriterionState,
			h.IsZombie,
			h.Tenant,
			h.ReportDate,
		}
		if err := w.writeRow(f, sheetDetections, row, cells); err != nil {
			return err
		}
		if h.IsZombie {
			start, _ := excelize.CoordinatesToCellName(1, row)
			end, _ := excelize.CoordinatesToCellName(len(cells), row)
			if err := f.SetCellStyle(sheetDetections, start, end, zombieStyle); err != nil {
				return fmt.Errorf("failed to style row %d: %w", row, err)
			}
		}
		row++
	}

	f.SetColWidth(sheetDetections, "A", "D", defaultColWidth)
	f.SetColWidth(sheetDetections, "E", "E", wideColWidth)
	f.SetColWidth(sheetDetections, "F", "I", defaultColWidth)
	return nil
}

func (w *Writer) headerStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{colorHeaderBg}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: colorHeaderFg},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return style, nil
}

func (w *Writer) writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func (w *Writer) writeRowStrings(f *excelize.File, sheet string, row int, cells []string) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return w.writeRow(f, sheet, row, values)
}

func (w *Writer) save(f *excelize.File, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save report %s: %w", outputPath, err)
	}
	return nil
}
