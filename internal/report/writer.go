// Package report provides report generation for detection results.
// It defines the ReportWriter interface and provides implementations
// for different output formats including JSON, CSV and Excel.
package report

import (
	"zombie-detector/internal/model"
)

// ReportWriter defines the interface for generating detection reports.
// Implementations write detection results or killed-registry summaries
// to files in their specific format.
type ReportWriter interface {
	// WriteDetections generates a report from a detection result and
	// saves it to the specified output path. The path should include
	// the file extension appropriate for the format.
	WriteDetections(result *model.DetectionResult, outputPath string) error

	// WriteKilled generates a report from a killed-registry summary.
	WriteKilled(summary *model.KilledSummary, outputPath string) error

	// Format returns the format identifier for this writer.
	// Common values are "json", "csv" and "excel".
	Format() string

	// Extension returns the file extension for this format, without
	// the leading dot.
	Extension() string
}
