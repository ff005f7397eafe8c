// Package credential persists the user's API key between runs, the way the
// web UI persists it in browser local storage: a single fixed key in a small
// key/value file under the user config directory.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// KeyName is the fixed name the credential is stored under.
const KeyName = "gemini-api-key"

const fileName = "credential.json"

type Store struct {
	path string
}

// NewStore returns a store rooted at the user config directory.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return NewStoreAt(filepath.Join(dir, "sketchify")), nil
}

// NewStoreAt returns a store rooted at the given directory.
func NewStoreAt(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// Save persists the credential, creating the store directory if needed.
func (s *Store) Save(value string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}

	data, err := json.Marshal(map[string]string{KeyName: value})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Load returns the stored credential, or "" when none has been saved.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return "", fmt.Errorf("failed to decode credential: %w", err)
	}
	return values[KeyName], nil
}

// Clear removes the stored credential. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
