package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zombie-detector/internal/model"
)

// jsonDetectionReport is the JSON report envelope.
type jsonDetectionReport struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Summary     *model.DetectionSummary `json:"summary"`
	Hosts       []*model.EnrichedHost   `json:"hosts"`
	Tracking    *model.TrackingReport   `json:"tracking,omitempty"`
}

// JSONWriter implements ReportWriter for JSON format.
type JSONWriter struct{}

// NewJSONWriter creates a new JSON report writer.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

// Format returns the format identifier for this writer.
func (w *JSONWriter) Format() string { return "json" }

// Extension returns the file extension for this format.
func (w *JSONWriter) Extension() string { return "json" }

// WriteDetections saves the detection result as an indented JSON file.
func (w *JSONWriter) WriteDetections(result *model.DetectionResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("detection result is nil")
	}

	return writeJSONFile(outputPath, jsonDetectionReport{
		GeneratedAt: time.Now().UTC(),
		Summary:     model.NewDetectionSummary(result.Hosts),
		Hosts:       result.Hosts,
		Tracking:    result.Tracking,
	})
}

// WriteKilled saves the killed-registry summary as an indented JSON file.
func (w *JSONWriter) WriteKilled(summary *model.KilledSummary, outputPath string) error {
	if summary == nil {
		return fmt.Errorf("killed summary is nil")
	}
	return writeJSONFile(outputPath, summary)
}

func writeJSONFile(path string, value any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
