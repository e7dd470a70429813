// Package history persists deprecation verdicts for later review.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/depradar/depradar/internal/engine"
)

var bucketVerdicts = []byte("verdicts")

// Entry is one recorded verdict.
type Entry struct {
	CheckedAt time.Time      `json:"checked_at"`
	URL       string         `json:"url"`
	Method    string         `json:"method"`
	Verdict   engine.Verdict `json:"verdict"`
}

// Store is a disk-backed verdict log using BoltDB. It records what the
// engine decided, never the discovered documents themselves.
type Store struct {
	db *bolt.DB
}

// Open opens or creates a store at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVerdicts)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Append records an entry. Keys are ordered by timestamp so iteration
// returns entries chronologically.
func (s *Store) Append(e Entry) error {
	if e.CheckedAt.IsZero() {
		e.CheckedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVerdicts)

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}

		key := e.CheckedAt.UTC().Format(time.RFC3339Nano) + "|" + e.Method + " " + e.URL
		return b.Put([]byte(key), data)
	})
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketVerdicts).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}

			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue // Skip invalid entries
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	var count int
	s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketVerdicts).Stats().KeyN
		return nil
	})
	return count
}

// Clear removes all entries.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketVerdicts); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketVerdicts)
		return err
	})
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}
