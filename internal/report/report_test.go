package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zombie-detector/internal/model"
)

func sampleResult() *model.DetectionResult {
	return &model.DetectionResult{
		Hosts: []*model.EnrichedHost{
			{
				HostRecord: model.HostRecord{
					DynatraceHostID:   "HOST-1",
					Hostname:          "host-1.example.com",
					RecentCPUDecrease: 1,
					Tenant:            "prod",
					Extra:             map[string]any{"datacenter": "eu-west"},
				},
				CriterionType:        "1A",
				CriterionAlias:       "Zombie",
				CriterionDescription: "Detectada una bajada repentina en el uso de CPU",
				CriterionState:       1,
				IsZombie:             true,
			},
			{
				HostRecord: model.HostRecord{
					DynatraceHostID: "HOST-2",
					Hostname:        "host-2.example.com",
				},
				CriterionType:  "0",
				CriterionAlias: "No Zombie Detected",
				CriterionState: 0,
			},
		},
		Tracking: &model.TrackingReport{
			NewZombies: []string{"HOST-1"},
			Stats:      model.TrackingStats{TotalZombies: 1, NewZombies: 1},
		},
	}
}

func sampleKilledSummary() *model.KilledSummary {
	return model.NewKilledSummary([]*model.KilledZombie{
		{
			DynatraceHostID: "HOST-9",
			Hostname:        "host-9.example.com",
			CriterionType:   "2A",
			CriterionAlias:  "Mummy",
			KilledAt:        time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		},
	}, 24)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	formats := r.GetAll()
	want := []string{"csv", "excel", "json"}
	if len(formats) != len(want) {
		t.Fatalf("formats = %v, want %v", formats, want)
	}
	for i, f := range want {
		if formats[i] != f {
			t.Errorf("formats[%d] = %q, want %q", i, formats[i], f)
		}
	}

	for _, name := range []string{"json", "JSON", " Excel "} {
		if !r.Has(name) {
			t.Errorf("Has(%q) = false", name)
		}
		if _, err := r.Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}

	if _, err := r.Get("pdf"); err == nil {
		t.Error("Get(pdf) should fail")
	}
}

func TestJSONWriterDetections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := NewJSONWriter().WriteDetections(sampleResult(), path); err != nil {
		t.Fatalf("WriteDetections: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var report jsonDetectionReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if report.Summary.TotalHosts != 2 || report.Summary.ZombieHosts != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if len(report.Hosts) != 2 {
		t.Errorf("hosts = %d, want 2", len(report.Hosts))
	}
	if report.Tracking == nil || report.Tracking.Stats.NewZombies != 1 {
		t.Errorf("tracking = %+v", report.Tracking)
	}

	// Passthrough metadata survives the report round trip.
	if report.Hosts[0].Extra["datacenter"] != "eu-west" {
		t.Errorf("extra = %v", report.Hosts[0].Extra)
	}
}

func TestJSONWriterKilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "killed.json")

	if err := NewJSONWriter().WriteKilled(sampleKilledSummary(), path); err != nil {
		t.Fatalf("WriteKilled: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var summary model.KilledSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.KilledZombiesCount != 1 || summary.SinceHours != 24 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestCSVWriterDetections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	if err := NewCSVWriter().WriteDetections(sampleResult(), path); err != nil {
		t.Fatalf("WriteDetections: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}

	header := rows[0]
	if header[0] != "dynatrace_host_id" {
		t.Errorf("header[0] = %q", header[0])
	}
	// Metadata columns come after the fixed ones.
	last := header[len(header)-1]
	if last != "datacenter" {
		t.Errorf("last column = %q, want datacenter", last)
	}
	if rows[1][len(rows[1])-1] != "eu-west" {
		t.Errorf("HOST-1 datacenter = %q", rows[1][len(rows[1])-1])
	}
	if rows[2][len(rows[2])-1] != "" {
		t.Errorf("HOST-2 datacenter should be empty, got %q", rows[2][len(rows[2])-1])
	}
}

func TestCSVWriterKilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "killed.csv")

	if err := NewCSVWriter().WriteKilled(sampleKilledSummary(), path); err != nil {
		t.Fatalf("WriteKilled: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1][3] != "Mummy" {
		t.Errorf("alias cell = %q", rows[1][3])
	}
}

func TestWritersCreateOutputDirectory(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "nested", "deep", "report.json")

	if err := NewJSONWriter().WriteDetections(sampleResult(), path); err != nil {
		t.Fatalf("WriteDetections: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report not created: %v", err)
	}
}
