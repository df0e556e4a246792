//go:build ignore
// +build ignore

// This script generates a sample Excel report for manual verification.
// Run with: go run scripts/verify_excel.go
package main

import (
	"fmt"
	"os"
	"time"

	"zombie-detector/internal/model"
	"zombie-detector/internal/report/excel"
)

func main() {
	result := &model.DetectionResult{
		Hosts: []*model.EnrichedHost{
			{
				HostRecord: model.HostRecord{
					DynatraceHostID:   "HOST-0001",
					Hostname:          "app-server-01.example.com",
					RecentCPUDecrease: 1,
					Tenant:            "prod",
					ReportDate:        "2026-08-25",
				},
				CriterionType:        "1A",
				CriterionAlias:       "Zombie",
				CriterionDescription: "Detectada una bajada repentina en el uso de CPU",
				CriterionState:       1,
				IsZombie:             true,
			},
			{
				HostRecord: model.HostRecord{
					DynatraceHostID:          "HOST-0002",
					Hostname:                 "db-server-01.example.com",
					RecentCPUDecrease:        1,
					RecentNetTrafficDecrease: 1,
					Tenant:                   "prod",
					ReportDate:               "2026-08-25",
				},
				CriterionType:        "2A",
				CriterionAlias:       "Mummy",
				CriterionDescription: "Detectada una bajada repentina en el uso de CPU, Detectada una caída brusca en el tráfico de red reciente",
				CriterionState:       1,
				IsZombie:             true,
			},
			{
				HostRecord: model.HostRecord{
					DynatraceHostID: "HOST-0003",
					Hostname:        "web-server-01.example.com",
					Tenant:          "staging",
					ReportDate:      "2026-08-25",
				},
				CriterionType:        "0",
				CriterionAlias:       "No Zombie Detected",
				CriterionDescription: "Sin criterios de zombie activos",
			},
		},
		Tracking: &model.TrackingReport{
			NewZombies:        []string{"HOST-0001"},
			PersistingZombies: []string{"HOST-0002"},
			KilledZombies:     []string{"HOST-0099"},
			Stats: model.TrackingStats{
				TotalZombies:      2,
				NewZombies:        1,
				PersistingZombies: 1,
				KilledZombies:     1,
			},
		},
	}

	outputPath := "sample_zombie_report.xlsx"
	if err := excel.NewWriter().WriteDetections(result, outputPath); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("✅ Report written:", outputPath)

	killed := model.NewKilledSummary([]*model.KilledZombie{
		{
			DynatraceHostID: "HOST-0099",
			Hostname:        "batch-worker-07.example.com",
			CriterionType:   "1C",
			CriterionAlias:  "Crawler",
			KilledAt:        time.Now().UTC(),
		},
	}, 24)

	killedPath := "sample_killed_report.xlsx"
	if err := excel.NewWriter().WriteKilled(killed, killedPath); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("✅ Report written:", killedPath)
}
