// Package tracker maintains zombie state across detection runs: the
// current snapshot, a bounded history log and the append-only killed
// registry.
package tracker

import "zombie-detector/internal/model"

// Store is the persistence port for tracking state. Implementations
// must tolerate missing state (first run) by returning empty values,
// not errors.
type Store interface {
	LoadSnapshot() (*model.Snapshot, error)
	SaveSnapshot(s *model.Snapshot) error

	LoadHistory() ([]*model.HistoryEntry, error)
	SaveHistory(entries []*model.HistoryEntry) error

	LoadKilled() ([]*model.KilledZombie, error)
	SaveKilled(entries []*model.KilledZombie) error

	Close() error
}
