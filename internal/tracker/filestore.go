package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"zombie-detector/internal/model"
)

const (
	snapshotFileName = "current_zombies.json"
	historyFileName  = "zombie_history.json"
	killedFileName   = "killed_zombies.json"
)

// historyFile is the on-disk envelope of the history log.
type historyFile struct {
	History []*model.HistoryEntry `json:"history"`
}

// killedFile is the on-disk envelope of the killed registry.
type killedFile struct {
	KilledZombies []*model.KilledZombie `json:"killed_zombies"`
}

// FileStore persists tracking state as three JSON files in a data
// directory. Corrupt or missing files degrade to empty state so a
// damaged data directory never blocks a detection run.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates the data directory if needed and returns a
// file-backed store.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("component", "filestore").Logger(),
	}, nil
}

func (fs *FileStore) LoadSnapshot() (*model.Snapshot, error) {
	var snap model.Snapshot
	if ok := fs.readJSON(snapshotFileName, &snap); !ok {
		return nil, nil
	}
	return &snap, nil
}

func (fs *FileStore) SaveSnapshot(s *model.Snapshot) error {
	return fs.writeJSON(snapshotFileName, s)
}

func (fs *FileStore) LoadHistory() ([]*model.HistoryEntry, error) {
	var f historyFile
	if ok := fs.readJSON(historyFileName, &f); !ok {
		return []*model.HistoryEntry{}, nil
	}
	if f.History == nil {
		f.History = []*model.HistoryEntry{}
	}
	return f.History, nil
}

func (fs *FileStore) SaveHistory(entries []*model.HistoryEntry) error {
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	return fs.writeJSON(historyFileName, historyFile{History: entries})
}

func (fs *FileStore) LoadKilled() ([]*model.KilledZombie, error) {
	var f killedFile
	if ok := fs.readJSON(killedFileName, &f); !ok {
		return []*model.KilledZombie{}, nil
	}
	if f.KilledZombies == nil {
		f.KilledZombies = []*model.KilledZombie{}
	}
	return f.KilledZombies, nil
}

func (fs *FileStore) SaveKilled(entries []*model.KilledZombie) error {
	if entries == nil {
		entries = []*model.KilledZombie{}
	}
	return fs.writeJSON(killedFileName, killedFile{KilledZombies: entries})
}

// Close is a no-op for the file backend.
func (fs *FileStore) Close() error { return nil }

// readJSON reports whether the target was populated. Missing files are
// normal (first run); corrupt files are logged and treated as absent.
func (fs *FileStore) readJSON(name string, target any) bool {
	path := filepath.Join(fs.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.logger.Warn().Err(err).Str("file", path).Msg("failed to read state file")
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		fs.logger.Warn().Err(err).Str("file", path).Msg("corrupt state file, starting empty")
		return false
	}
	return true
}

func (fs *FileStore) writeJSON(name string, value any) error {
	path := filepath.Join(fs.dir, name)
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
