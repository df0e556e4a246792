package tracker

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zombie-detector/internal/model"
)

// DefaultHistoryLimit bounds the history log. The oldest entries are
// evicted first.
const DefaultHistoryLimit = 1000

// Tracker compares each detection run against the previous snapshot
// and maintains the killed registry and history log. All public
// methods are safe for concurrent use within one process; the store's
// file lock guards against other processes.
type Tracker struct {
	mu           sync.Mutex
	store        Store
	historyLimit int
	logger       zerolog.Logger
	now          func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithHistoryLimit overrides the history log bound.
func WithHistoryLimit(limit int) Option {
	return func(t *Tracker) {
		if limit > 0 {
			t.historyLimit = limit
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a tracker on top of a store.
func New(store Store, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:        store,
		historyLimit: DefaultHistoryLimit,
		logger:       logger.With().Str("component", "tracker").Logger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordSnapshot registers the zombie set of a detection run and
// returns the transition report relative to the previous snapshot.
// Every host id of the union of both runs lands in exactly one of the
// report's three sets. A host that was killed earlier and reappears is
// reported as new; its old killed-registry entry is kept.
//
// Persistence failures after the diff are logged, not returned, so a
// degraded data directory can not suppress the report.
func (t *Tracker) RecordSnapshot(zombies []*model.EnrichedHost) (*model.TrackingReport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	previous, err := t.store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	now := t.now().UTC()
	current := &model.Snapshot{
		RunID:     uuid.NewString(),
		Timestamp: now,
		Zombies:   zombies,
	}
	if current.Zombies == nil {
		current.Zombies = []*model.EnrichedHost{}
	}

	currentIDs := current.IDSet()
	previousIDs := previous.IDSet()

	report := &model.TrackingReport{
		NewZombies:        []string{},
		PersistingZombies: []string{},
		KilledZombies:     []string{},
	}
	for id := range currentIDs {
		if _, ok := previousIDs[id]; ok {
			report.PersistingZombies = append(report.PersistingZombies, id)
		} else {
			report.NewZombies = append(report.NewZombies, id)
		}
	}
	for id := range previousIDs {
		if _, ok := currentIDs[id]; !ok {
			report.KilledZombies = append(report.KilledZombies, id)
		}
	}
	sort.Strings(report.NewZombies)
	sort.Strings(report.PersistingZombies)
	sort.Strings(report.KilledZombies)

	report.Stats = model.TrackingStats{
		TotalZombies:      len(currentIDs),
		NewZombies:        len(report.NewZombies),
		PersistingZombies: len(report.PersistingZombies),
		KilledZombies:     len(report.KilledZombies),
	}

	current.ZombieIDs = sortedIDs(currentIDs)
	current.Stats = report.Stats

	if err := t.store.SaveSnapshot(current); err != nil {
		t.logger.Error().Err(err).Msg("failed to persist snapshot")
	}
	t.appendHistory(current)
	t.appendKilled(previous, report.KilledZombies, now)

	t.logger.Info().
		Str("run_id", current.RunID).
		Int("total", report.Stats.TotalZombies).
		Int("new", report.Stats.NewZombies).
		Int("persisting", report.Stats.PersistingZombies).
		Int("killed", report.Stats.KilledZombies).
		Msg("recorded detection run")

	return report, nil
}

func (t *Tracker) appendHistory(current *model.Snapshot) {
	history, err := t.store.LoadHistory()
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to load history")
		return
	}

	history = append(history, &model.HistoryEntry{
		RunID:       current.RunID,
		Timestamp:   current.Timestamp,
		ZombieCount: len(current.Zombies),
		Zombies:     current.Zombies,
	})
	if len(history) > t.historyLimit {
		history = history[len(history)-t.historyLimit:]
	}

	if err := t.store.SaveHistory(history); err != nil {
		t.logger.Error().Err(err).Msg("failed to persist history")
	}
}

func (t *Tracker) appendKilled(previous *model.Snapshot, killedIDs []string, now time.Time) {
	if len(killedIDs) == 0 {
		return
	}

	killed, err := t.store.LoadKilled()
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to load killed registry")
		return
	}

	for _, id := range killedIDs {
		entry := &model.KilledZombie{
			DynatraceHostID: id,
			KilledAt:        now,
		}
		if last := previous.FindZombie(id); last != nil {
			entry.Hostname = last.Hostname
			entry.CriterionType = last.CriterionType
			entry.CriterionAlias = last.CriterionAlias
			entry.LastDetection = last
		}
		killed = append(killed, entry)
	}

	if err := t.store.SaveKilled(killed); err != nil {
		t.logger.Error().Err(err).Msg("failed to persist killed registry")
	}
}

// CurrentSnapshot returns the last recorded snapshot, or nil before the
// first run.
func (t *Tracker) CurrentSnapshot() (*model.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.LoadSnapshot()
}

// IsKilled returns the most recent killed-registry entry for a host id,
// or nil when the host was never killed.
func (t *Tracker) IsKilled(id string) (*model.KilledZombie, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	killed, err := t.store.LoadKilled()
	if err != nil {
		return nil, fmt.Errorf("failed to load killed registry: %w", err)
	}

	var latest *model.KilledZombie
	for _, e := range killed {
		if e == nil || e.DynatraceHostID != id {
			continue
		}
		if latest == nil || e.KilledAt.After(latest.KilledAt) {
			latest = e
		}
	}
	return latest, nil
}

// KilledSince returns the killed-registry entries with KilledAt inside
// the trailing window, newest first.
func (t *Tracker) KilledSince(hours int) ([]*model.KilledZombie, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	killed, err := t.store.LoadKilled()
	if err != nil {
		return nil, fmt.Errorf("failed to load killed registry: %w", err)
	}

	cutoff := t.now().UTC().Add(-time.Duration(hours) * time.Hour)
	recent := make([]*model.KilledZombie, 0, len(killed))
	for _, e := range killed {
		if e != nil && e.KilledAt.After(cutoff) {
			recent = append(recent, e)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].KilledAt.After(recent[j].KilledAt)
	})
	return recent, nil
}

// Lifecycle reconstructs everything known about one host id from the
// history log, the current snapshot and the killed registry. An unknown
// id yields an empty lifecycle, not an error.
func (t *Tracker) Lifecycle(id string) (*model.Lifecycle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lc := &model.Lifecycle{
		ZombieID:         id,
		DetectionHistory: []model.Detection{},
	}

	history, err := t.store.LoadHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	for _, entry := range history {
		if entry == nil {
			continue
		}
		for _, z := range entry.Zombies {
			if z == nil || z.DynatraceHostID != id {
				continue
			}
			ts := entry.Timestamp
			lc.DetectionHistory = append(lc.DetectionHistory, model.Detection{
				Timestamp:      ts,
				CriterionType:  z.CriterionType,
				CriterionAlias: z.CriterionAlias,
			})
			if lc.FirstSeen == nil || ts.Before(*lc.FirstSeen) {
				first := ts
				lc.FirstSeen = &first
			}
			if lc.LastSeen == nil || ts.After(*lc.LastSeen) {
				last := ts
				lc.LastSeen = &last
			}
		}
	}
	lc.TotalDetections = len(lc.DetectionHistory)

	snapshot, err := t.store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	lc.IsActive = snapshot.FindZombie(id) != nil

	killed, err := t.store.LoadKilled()
	if err != nil {
		return nil, fmt.Errorf("failed to load killed registry: %w", err)
	}
	for _, e := range killed {
		if e == nil || e.DynatraceHostID != id {
			continue
		}
		if lc.KilledInfo == nil || e.KilledAt.After(lc.KilledInfo.KilledAt) {
			lc.KilledInfo = e
		}
	}

	return lc, nil
}

// CleanupResult reports how many records a retention pass removed.
type CleanupResult struct {
	HistoryRemoved int `json:"history_removed"`
	KilledRemoved  int `json:"killed_removed"`
}

// Cleanup drops history entries and killed-registry records older than
// the retention window. A record exactly daysToKeep days old is still
// inside the window and is kept.
func (t *Tracker) Cleanup(daysToKeep int) (*CleanupResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().UTC().AddDate(0, 0, -daysToKeep)
	result := &CleanupResult{}

	history, err := t.store.LoadHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	keptHistory := make([]*model.HistoryEntry, 0, len(history))
	for _, e := range history {
		if e != nil && !e.Timestamp.Before(cutoff) {
			keptHistory = append(keptHistory, e)
		}
	}
	result.HistoryRemoved = len(history) - len(keptHistory)
	if result.HistoryRemoved > 0 {
		if err := t.store.SaveHistory(keptHistory); err != nil {
			return nil, fmt.Errorf("failed to persist history: %w", err)
		}
	}

	killed, err := t.store.LoadKilled()
	if err != nil {
		return nil, fmt.Errorf("failed to load killed registry: %w", err)
	}
	keptKilled := make([]*model.KilledZombie, 0, len(killed))
	for _, e := range killed {
		if e != nil && !e.KilledAt.Before(cutoff) {
			keptKilled = append(keptKilled, e)
		}
	}
	result.KilledRemoved = len(killed) - len(keptKilled)
	if result.KilledRemoved > 0 {
		if err := t.store.SaveKilled(keptKilled); err != nil {
			return nil, fmt.Errorf("failed to persist killed registry: %w", err)
		}
	}

	t.logger.Info().
		Int("history_removed", result.HistoryRemoved).
		Int("killed_removed", result.KilledRemoved).
		Int("days_to_keep", daysToKeep).
		Msg("cleanup finished")

	return result, nil
}

// Close releases the underlying store.
func (t *Tracker) Close() error {
	return t.store.Close()
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
