package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSettings = []byte("settings")
	bucketLists    = []byte("lists")
)

const dbFileName = "airwave.db"

// Store is the persisted settings area plus a small list cache, backed by BoltDB.
// Reads are promoted into an in-memory cache; writes go through to disk
// before returning.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	now func() time.Time
}

// Open opens (or creates) the store under dir.
// An empty dir yields a memory-only store that forgets everything on Close.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{cache: make(map[string][]byte), now: time.Now}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSettings, bucketLists} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte), now: time.Now}, nil
}

// Close releases the database file
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Persistent returns true if the store is backed by a file
func (s *Store) Persistent() bool {
	return s.db != nil
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string) ([]byte, bool) {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// bolt values are only valid inside the transaction
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return nil, false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data, true
}

func (s *Store) put(bucket []byte, key string, data []byte) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) clearBucket(bucket []byte) error {
	s.mu.Lock()
	prefix := string(bucket) + ":"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Settings (domain.KeyValueStore) ===

// Get returns the settings value stored under key
func (s *Store) Get(key string) (string, bool) {
	data, ok := s.get(bucketSettings, key)
	if !ok {
		return "", false
	}
	return string(data), true
}

// Set stores value under key
func (s *Store) Set(key, value string) error {
	return s.put(bucketSettings, key, []byte(value))
}

// Delete removes key from the settings area
func (s *Store) Delete(key string) error {
	return s.delete(bucketSettings, key)
}

// === List cache ===

type cachedList struct {
	Items   []string `json:"items"`
	SavedAt int64    `json:"saved_at"`
}

// ListCache caches directory option lists (countries, languages) per directory.
type ListCache struct {
	store *Store
	scope string
}

// Lists returns a list cache scoped to the given directory URL, so switching
// mirrors never serves another mirror's lists.
func (s *Store) Lists(directoryURL string) *ListCache {
	return &ListCache{store: s, scope: hashURL(directoryURL)}
}

func hashURL(u string) string {
	normalized := strings.TrimRight(strings.ToLower(u), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (c *ListCache) key(name string) string {
	return c.scope + ":" + name
}

// Get returns the cached list when it is younger than maxAge.
// A non-positive maxAge accepts any age.
func (c *ListCache) Get(name string, maxAge time.Duration) ([]string, bool) {
	data, ok := c.store.get(bucketLists, c.key(name))
	if !ok {
		return nil, false
	}

	var entry cachedList
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if maxAge > 0 {
		age := c.store.now().Sub(time.Unix(entry.SavedAt, 0))
		if age > maxAge {
			return nil, false
		}
	}
	return entry.Items, true
}

// Save stores items under name with the current time
func (c *ListCache) Save(name string, items []string) error {
	data, err := json.Marshal(cachedList{Items: items, SavedAt: c.store.now().Unix()})
	if err != nil {
		return err
	}
	return c.store.put(bucketLists, c.key(name), data)
}

// InvalidateAll drops every cached list for every directory
func (c *ListCache) InvalidateAll() error {
	return c.store.clearBucket(bucketLists)
}
