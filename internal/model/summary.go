// Package model provides data models for the zombie detector.
package model

import "math"

// DetectionSummary provides aggregated statistics for one batch.
type DetectionSummary struct {
	TotalHosts         int            `json:"total_hosts"`
	ZombieHosts        int            `json:"zombie_hosts"`
	NonZombieHosts     int            `json:"non_zombie_hosts"`
	ZombiePercentage   float64        `json:"zombie_percentage"`
	CriterionBreakdown map[string]int `json:"criterion_breakdown"`
}

// NewDetectionSummary builds a summary from enriched host records.
func NewDetectionSummary(hosts []*EnrichedHost) *DetectionSummary {
	summary := &DetectionSummary{
		CriterionBreakdown: make(map[string]int),
	}

	for _, h := range hosts {
		if h == nil {
			continue
		}
		summary.TotalHosts++
		if h.IsZombie {
			summary.ZombieHosts++
		}
		code := h.CriterionType
		if code == "" {
			code = "0"
		}
		summary.CriterionBreakdown[code]++
	}

	summary.NonZombieHosts = summary.TotalHosts - summary.ZombieHosts
	if summary.TotalHosts > 0 {
		pct := float64(summary.ZombieHosts) / float64(summary.TotalHosts) * 100
		summary.ZombiePercentage = math.Round(pct*100) / 100
	}
	return summary
}

// KilledSummary aggregates killed-registry entries for a time window.
type KilledSummary struct {
	KilledZombiesCount int             `json:"killed_zombies_count"`
	SinceHours         int             `json:"since_hours"`
	KilledZombies      []*KilledZombie `json:"killed_zombies"`
	CriterionBreakdown map[string]int  `json:"criterion_breakdown"`
}

// NewKilledSummary builds a summary from killed-registry entries.
func NewKilledSummary(entries []*KilledZombie, sinceHours int) *KilledSummary {
	summary := &KilledSummary{
		KilledZombiesCount: len(entries),
		SinceHours:         sinceHours,
		KilledZombies:      entries,
		CriterionBreakdown: make(map[string]int),
	}
	if summary.KilledZombies == nil {
		summary.KilledZombies = make([]*KilledZombie, 0)
	}

	for _, e := range entries {
		if e == nil {
			continue
		}
		code := e.CriterionType
		if code == "" {
			code = "unknown"
		}
		summary.CriterionBreakdown[code]++
	}
	return summary
}
