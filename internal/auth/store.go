package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User identifies the logged-in account as reported by the server.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Credentials is the persisted auth blob.
type Credentials struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user,omitempty"`
}

// Store persists credentials as a JSON file so login survives restarts.
// All methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath resolves the credentials file path in priority order:
// 1. QUIZDECK_AUTH environment variable
// 2. $XDG_DATA_HOME/quizdeck/auth.json
// 3. ~/.local/share/quizdeck/auth.json
func DefaultPath() (string, error) {
	if p := os.Getenv("QUIZDECK_AUTH"); p != "" {
		return p, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "quizdeck", "auth.json"), nil
}

// Get returns the stored credentials, or nil if none exist or the stored
// token has expired. Expired tokens are treated as absent so callers never
// send a token the server will reject.
func (s *Store) Get() *Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil
	}
	if creds.AccessToken == "" {
		return nil
	}
	if TokenExpired(creds.AccessToken, time.Now()) {
		return nil
	}
	return &creds
}

// Token returns the stored access token, or "" when logged out.
func (s *Store) Token() string {
	if creds := s.Get(); creds != nil {
		return creds.AccessToken
	}
	return ""
}

// Set persists the credentials, replacing any existing blob.
func (s *Store) Set(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the stored credentials. Clearing an empty store is not an
// error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// TokenExpired reports whether the JWT's exp claim is at or before now.
// The signature is not verified; the server remains the authority — this
// only avoids sending a token that is already known to be dead. Tokens
// that fail to parse or carry no exp claim are assumed valid.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
