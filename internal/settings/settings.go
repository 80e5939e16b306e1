// Package settings implements the key/value settings store backing
// getSettings/setSettings, with a short-lived in-memory cache over the
// setting table, grounded on models/settings.rs.
package settings

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/cfilipov/dockge/internal/apperr"
)

const cacheTTL = 60 * time.Second

type cacheEntry struct {
	value   json.RawMessage
	setAt   time.Time
	sqlType string
}

type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func New(db *sql.DB) *Store {
	return &Store{db: db, cache: make(map[string]cacheEntry)}
}

// Get returns the raw JSON value for key, falling back to the
// database and repopulating the cache on a miss or expiry.
func (s *Store) Get(key string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Since(entry.setAt) < cacheTTL {
		return entry.value, true, nil
	}

	var value, typ sql.NullString
	err := s.db.QueryRow(`SELECT value, type FROM setting WHERE key = ?`, key).Scan(&value, &typ)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Wrap(apperr.Db, err)
	}

	raw := json.RawMessage(value.String)
	s.mu.Lock()
	s.cache[key] = cacheEntry{value: raw, setAt: time.Now(), sqlType: typ.String}
	s.mu.Unlock()
	return raw, true, nil
}

// GetBool is a convenience accessor for boolean-valued settings used
// throughout the stack/imagecheck engines (disableAuth,
// imageUpdateCheckEnabled, hideVersion).
func (s *Store) GetBool(key string, fallback bool) bool {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return fallback
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	return v
}

func (s *Store) GetUint64(key string, fallback uint64) uint64 {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return fallback
	}
	var v uint64
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	return v
}

func (s *Store) GetString(key, fallback string) string {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return fallback
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	return v
}

// Set upserts key with a value of the given logical type ("string",
// "bool", "number") and invalidates the cache entry.
func (s *Store) Set(key string, value any, sqlType string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperr.Wrap(apperr.Validation, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO setting (key, value, type) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, type = excluded.type
	`, key, string(raw), sqlType)
	if err != nil {
		return apperr.Wrap(apperr.Db, err)
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
	return nil
}

// All returns every setting as a map, for the getSettings event.
func (s *Store) All() (map[string]json.RawMessage, error) {
	rows, err := s.db.Query(`SELECT key, value FROM setting`)
	if err != nil {
		return nil, apperr.Wrap(apperr.Db, err)
	}
	defer rows.Close()

	out := map[string]json.RawMessage{}
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, apperr.Wrap(apperr.Db, err)
		}
		out[key] = json.RawMessage(value.String)
	}
	return out, rows.Err()
}

func (s *Store) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]cacheEntry)
	s.mu.Unlock()
}
