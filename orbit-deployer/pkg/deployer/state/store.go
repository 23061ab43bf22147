package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store persists the RunState to a single JSON file.
// Only one process may use a given file at a time; this is not enforced.
type Store struct {
	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a state file is present.
func (s *Store) Exists() (bool, error) {
	return afero.Exists(s.fs, s.path)
}

// Load reads the state file. A missing file yields a fresh state with chain id 0, so it never
// matches a configured chain. Missing fields are repaired to their defaults.
func (s *Store) Load() (*RunState, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewRunState(0), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read resume state %s: %w", s.path, err)
	}
	st, err := decodeRunState(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode resume state %s: %w", s.path, err)
	}
	return st, nil
}

// Save overwrites the state file with st. The new content is written to a temporary file
// first and renamed into place, so a crash never leaves a truncated record behind.
func (s *Store) Save(st *RunState) error {
	st.Version = StateVersion
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode resume state: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create resume state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write resume state: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to move resume state into place: %w", err)
	}
	return nil
}

// Remove deletes the state file. Removing a missing file is not an error.
func (s *Store) Remove() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove resume state %s: %w", s.path, err)
	}
	return nil
}
