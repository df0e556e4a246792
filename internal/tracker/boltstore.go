package tracker

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"zombie-detector/internal/model"
)

const boltFileName = "zombie-tracker.db"

var (
	bucketSnapshot = []byte("snapshot")
	bucketHistory  = []byte("history")
	bucketKilled   = []byte("killed")

	snapshotKey = []byte("current")
)

// BoltStore persists tracking state in a single bbolt database. The
// file lock taken by bbolt doubles as a cross-process guard against
// concurrent detection runs sharing a data directory.
type BoltStore struct {
	db     *bolt.DB
	logger zerolog.Logger
}

// NewBoltStore opens (or creates) the tracker database inside dir.
func NewBoltStore(dir string, logger zerolog.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, boltFileName)
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open tracker database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSnapshot, bucketHistory, bucketKilled} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{
		db:     db,
		logger: logger.With().Str("component", "boltstore").Logger(),
	}, nil
}

func (bs *BoltStore) LoadSnapshot() (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := bs.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSnapshot).Get(snapshotKey)
		if data == nil {
			return nil
		}
		var s model.Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			bs.logger.Warn().Err(err).Msg("corrupt snapshot record, starting empty")
			return nil
		}
		snap = &s
		return nil
	})
	return snap, err
}

func (bs *BoltStore) SaveSnapshot(s *model.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Put(snapshotKey, data)
	})
}

func (bs *BoltStore) LoadHistory() ([]*model.HistoryEntry, error) {
	entries := []*model.HistoryEntry{}
	err := bs.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHistory).ForEach(func(_, v []byte) error {
			var e model.HistoryEntry
			if err := json.Unmarshal(v, &e); err != nil {
				bs.logger.Warn().Err(err).Msg("skipping corrupt history record")
				return nil
			}
			entries = append(entries, &e)
			return nil
		})
	})
	return entries, err
}

func (bs *BoltStore) SaveHistory(entries []*model.HistoryEntry) error {
	return bs.rewriteBucket(bucketHistory, len(entries), func(i int) (any, error) {
		return entries[i], nil
	})
}

func (bs *BoltStore) LoadKilled() ([]*model.KilledZombie, error) {
	entries := []*model.KilledZombie{}
	err := bs.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKilled).ForEach(func(_, v []byte) error {
			var e model.KilledZombie
			if err := json.Unmarshal(v, &e); err != nil {
				bs.logger.Warn().Err(err).Msg("skipping corrupt killed record")
				return nil
			}
			entries = append(entries, &e)
			return nil
		})
	})
	return entries, err
}

func (bs *BoltStore) SaveKilled(entries []*model.KilledZombie) error {
	return bs.rewriteBucket(bucketKilled, len(entries), func(i int) (any, error) {
		return entries[i], nil
	})
}

// rewriteBucket replaces a bucket's contents with n records keyed by
// big-endian sequence number, preserving insertion order on iteration.
func (bs *BoltStore) rewriteBucket(name []byte, n int, record func(int) (any, error)) error {
	return bs.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil {
			return fmt.Errorf("failed to reset bucket %s: %w", name, err)
		}
		b, err := tx.CreateBucket(name)
		if err != nil {
			return fmt.Errorf("failed to recreate bucket %s: %w", name, err)
		}

		for i := 0; i < n; i++ {
			rec, err := record(i)
			if err != nil {
				return err
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode record %d: %w", i, err)
			}

			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := b.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bs *BoltStore) Close() error {
	return bs.db.Close()
}
