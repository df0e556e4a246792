package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"zombie-detector/internal/model"
)

func sampleResult() *model.DetectionResult {
	return &model.DetectionResult{
		Hosts: []*model.EnrichedHost{
			{
				HostRecord: model.HostRecord{
					DynatraceHostID: "HOST-1",
					Hostname:        "host-1.example.com",
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
			},
		},
		Tracking: &model.TrackingReport{
			Stats: model.TrackingStats{TotalZombies: 1, NewZombies: 1},
		},
	}
}

func TestWriteDetections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	if err := NewWriter().WriteDetections(sampleResult(), path); err != nil {
		t.Fatalf("WriteDetections: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen report: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{sheetSummary, sheetDetections} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %q missing", sheet)
		}
	}

	rows, err := f.GetRows(sheetDetections)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("detection rows = %d, want header + 2", len(rows))
	}
	if rows[1][3] != "Zombie" {
		t.Errorf("alias cell = %q", rows[1][3])
	}

	summaryRows, err := f.GetRows(sheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaryRows) < 7 {
		t.Errorf("summary rows = %d, want tracking stats included", len(summaryRows))
	}
}

func TestWriteKilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "killed.xlsx")

	summary := model.NewKilledSummary([]*model.KilledZombie{
		{
			DynatraceHostID: "HOST-9",
			Hostname:        "host-9.example.com",
			CriterionType:   "2A",
			CriterionAlias:  "Mummy",
			KilledAt:        time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		},
	}, 24)

	if err := NewWriter().WriteKilled(summary, path); err != nil {
		t.Fatalf("WriteKilled: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetKilled)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1][0] != "HOST-9" || rows[1][3] != "Mummy" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestWriteDetectionsNilResult(t *testing.T) {
	if err := NewWriter().WriteDetections(nil, filepath.Join(t.TempDir(), "x.xlsx")); err == nil {
		t.Error("nil result should fail")
	}
}
