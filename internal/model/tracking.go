// Package model provides data models for the zombie detector.
package model

import "time"

// TrackingStats counts the membership transitions of one detection run.
type TrackingStats struct {
	TotalZombies      int `json:"total_zombies"`
	NewZombies        int `json:"new_zombies"`
	PersistingZombies int `json:"persisting_zombies"`
	KilledZombies     int `json:"killed_zombies"`
}

// Snapshot is the full zombie set observed in one detection run.
type Snapshot struct {
	RunID     string          `json:"run_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Zombies   []*EnrichedHost `json:"zombies"`
	ZombieIDs []string        `json:"zombie_ids"`
	Stats     TrackingStats   `json:"stats"`
}

// IDSet returns the snapshot's host identifiers as a set.
func (s *Snapshot) IDSet() map[string]struct{} {
	if s == nil {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(s.Zombies))
	for _, z := range s.Zombies {
		if z != nil && z.DynatraceHostID != "" {
			set[z.DynatraceHostID] = struct{}{}
		}
	}
	return set
}

// FindZombie returns the snapshot record for a host id, or nil.
func (s *Snapshot) FindZombie(id string) *EnrichedHost {
	if s == nil {
		return nil
	}
	for _, z := range s.Zombies {
		if z != nil && z.DynatraceHostID == id {
			return z
		}
	}
	return nil
}

// HistoryEntry is one archived detection run in the history log.
type HistoryEntry struct {
	RunID       string          `json:"run_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	ZombieCount int             `json:"zombie_count"`
	Zombies     []*EnrichedHost `json:"zombies"`
}

// KilledZombie is a durable record of a host leaving the zombie set.
// The registry is append-only: a host killed, revived and killed again
// produces two entries.
type KilledZombie struct {
	DynatraceHostID string        `json:"dynatrace_host_id"`
	Hostname        string        `json:"hostname"`
	CriterionType   string        `json:"criterion_type"`
	CriterionAlias  string        `json:"criterion_alias"`
	KilledAt        time.Time     `json:"killed_at"`
	LastDetection   *EnrichedHost `json:"last_detection,omitempty"`
}

// TrackingReport classifies every host id of a run as new, persisting
// or killed relative to the previous snapshot. The three sets are
// pairwise disjoint.
type TrackingReport struct {
	NewZombies        []string      `json:"new_zombies"`
	PersistingZombies []string      `json:"persisting_zombies"`
	KilledZombies     []string      `json:"killed_zombies"`
	Stats             TrackingStats `json:"stats"`
}

// Detection is one historical sighting of a host in the history log.
type Detection struct {
	Timestamp      time.Time `json:"timestamp"`
	CriterionType  string    `json:"criterion_type"`
	CriterionAlias string    `json:"criterion_alias"`
}

// Lifecycle aggregates everything known about one host id across the
// history log, the current snapshot and the killed registry. An id
// never seen anywhere yields a zero-valued (but structurally complete)
// lifecycle, not an error.
type Lifecycle struct {
	ZombieID         string        `json:"zombie_id"`
	FirstSeen        *time.Time    `json:"first_seen"`
	LastSeen         *time.Time    `json:"last_seen"`
	TotalDetections  int           `json:"total_detections"`
	IsActive         bool          `json:"is_active"`
	KilledInfo       *KilledZombie `json:"killed_info"`
	DetectionHistory []Detection   `json:"detection_history"`
}

// DetectionResult is the outcome of one full processing pass: the
// enriched batch plus, when tracking ran, the transition report.
type DetectionResult struct {
	Hosts    []*EnrichedHost `json:"hosts"`
	Tracking *TrackingReport `json:"tracking,omitempty"`
}
