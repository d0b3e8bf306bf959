// Package prefs persists small per-flow blobs (in-progress option and page
// selections) so an interrupted quiz setup can resume. Blobs carry a saved-at
// timestamp and expire softly: a stale blob is discarded on read rather than
// used.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TTL is the soft expiry applied to every blob.
const TTL = 24 * time.Hour

type envelope struct {
	SavedAt time.Time       `json:"savedAt"`
	Data    json.RawMessage `json:"data"`
}

// Store reads and writes expiring JSON blobs, one file per key.
type Store struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// DefaultDir resolves the prefs directory under the XDG state dir.
func DefaultDir() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "quizdeck", "prefs"), nil
}

// Save stores v under key with the current timestamp.
func (s *Store) Save(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode prefs %q: %w", key, err)
	}
	env, err := json.Marshal(envelope{SavedAt: s.now(), Data: data})
	if err != nil {
		return fmt.Errorf("encode prefs envelope %q: %w", key, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	if err := os.WriteFile(s.path(key), env, 0o600); err != nil {
		return fmt.Errorf("write prefs %q: %w", key, err)
	}
	return nil
}

// Load reads the blob for key into v. Returns false when the key is absent,
// unreadable, or older than TTL; stale blobs are deleted as a side effect.
func (s *Store) Load(key string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	if s.now().Sub(env.SavedAt) > TTL {
		_ = os.Remove(s.path(key))
		return false
	}
	return json.Unmarshal(env.Data, v) == nil
}

// Delete removes the blob for key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove prefs %q: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
