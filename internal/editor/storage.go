package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketSession = []byte("session")
	keySnapshot   = []byte("snapshot")
)

// BoltStore persists the session snapshot in a BoltDB file, one record
// holding the draft list and the current campaign.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the snapshot database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Load reads the persisted snapshot. It returns (nil, nil) when nothing has
// been persisted yet.
func (s *BoltStore) Load() (*Snapshot, error) {
	var snap *Snapshot

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSession).Get(keySnapshot)
		if data == nil {
			return nil
		}
		var v Snapshot
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		snap = &v
		return nil
	})

	return snap, err
}

// Save writes the snapshot, replacing any prior one.
func (s *BoltStore) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put(keySnapshot, data)
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
