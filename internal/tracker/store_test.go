package tracker

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zombie-detector/internal/model"
)

// storeFactory opens a fresh store in a temp directory.
type storeFactory func(t *testing.T) Store

func storeBackends() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T) Store {
			t.Helper()
			s, err := NewFileStore(t.TempDir(), zerolog.Nop())
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			return s
		},
		"bolt": func(t *testing.T) Store {
			t.Helper()
			s, err := NewBoltStore(t.TempDir(), zerolog.Nop())
			if err != nil {
				t.Fatalf("NewBoltStore: %v", err)
			}
			return s
		},
	}
}

func TestStoreEmptyState(t *testing.T) {
	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			snap, err := s.LoadSnapshot()
			if err != nil {
				t.Fatalf("LoadSnapshot: %v", err)
			}
			if snap != nil {
				t.Errorf("snapshot = %+v, want nil before first run", snap)
			}

			history, err := s.LoadHistory()
			if err != nil {
				t.Fatalf("LoadHistory: %v", err)
			}
			if len(history) != 0 {
				t.Errorf("history = %d entries, want 0", len(history))
			}

			killed, err := s.LoadKilled()
			if err != nil {
				t.Fatalf("LoadKilled: %v", err)
			}
			if len(killed) != 0 {
				t.Errorf("killed = %d entries, want 0", len(killed))
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ts := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			snap := &model.Snapshot{
				RunID:     "run-1",
				Timestamp: ts,
				Zombies:   []*model.EnrichedHost{newZombie("HOST-1", "1A", "Zombie")},
				ZombieIDs: []string{"HOST-1"},
				Stats:     model.TrackingStats{TotalZombies: 1, NewZombies: 1},
			}
			if err := s.SaveSnapshot(snap); err != nil {
				t.Fatalf("SaveSnapshot: %v", err)
			}

			loaded, err := s.LoadSnapshot()
			if err != nil {
				t.Fatalf("LoadSnapshot: %v", err)
			}
			if loaded == nil || loaded.RunID != "run-1" || len(loaded.Zombies) != 1 {
				t.Fatalf("loaded snapshot = %+v", loaded)
			}
			if loaded.Zombies[0].CriterionAlias != "Zombie" {
				t.Errorf("zombie alias = %q", loaded.Zombies[0].CriterionAlias)
			}

			history := []*model.HistoryEntry{
				{RunID: "run-0", Timestamp: ts.Add(-time.Hour), ZombieCount: 0},
				{RunID: "run-1", Timestamp: ts, ZombieCount: 1, Zombies: snap.Zombies},
			}
			if err := s.SaveHistory(history); err != nil {
				t.Fatalf("SaveHistory: %v", err)
			}
			gotHistory, err := s.LoadHistory()
			if err != nil {
				t.Fatalf("LoadHistory: %v", err)
			}
			if len(gotHistory) != 2 || gotHistory[0].RunID != "run-0" || gotHistory[1].RunID != "run-1" {
				t.Errorf("history order not preserved: %+v", gotHistory)
			}

			killed := []*model.KilledZombie{
				{DynatraceHostID: "HOST-9", Hostname: "host-9", CriterionType: "2A", CriterionAlias: "Mummy", KilledAt: ts},
			}
			if err := s.SaveKilled(killed); err != nil {
				t.Fatalf("SaveKilled: %v", err)
			}
			gotKilled, err := s.LoadKilled()
			if err != nil {
				t.Fatalf("LoadKilled: %v", err)
			}
			if len(gotKilled) != 1 || gotKilled[0].CriterionAlias != "Mummy" {
				t.Errorf("killed = %+v", gotKilled)
			}
		})
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			if err := s.SaveKilled([]*model.KilledZombie{
				{DynatraceHostID: "HOST-1"},
				{DynatraceHostID: "HOST-2"},
			}); err != nil {
				t.Fatal(err)
			}
			if err := s.SaveKilled([]*model.KilledZombie{
				{DynatraceHostID: "HOST-3"},
			}); err != nil {
				t.Fatal(err)
			}

			killed, err := s.LoadKilled()
			if err != nil {
				t.Fatal(err)
			}
			if len(killed) != 1 || killed[0].DynatraceHostID != "HOST-3" {
				t.Errorf("killed = %+v, want only HOST-3", killed)
			}
		})
	}
}
