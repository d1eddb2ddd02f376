package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/soundslate/internal/shared"
)

// FileStore persists a [Session] as a TOML file with mode 0600.
type FileStore struct {
	path string
}

// NewFileStore returns a store for path. A leading "~" is expanded.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: shared.ExpandHome(path)}
}

func (f *FileStore) Path() string { return f.path }

// Load reads the session file. A missing file or empty token is [shared.ErrNotAuthenticated].
func (f *FileStore) Load() (*Session, error) {
	var s Session
	if _, err := toml.DecodeFile(f.path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: run `soundslate auth login`", shared.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: session file has no token", shared.ErrNotAuthenticated)
	}
	return &s, nil
}

// Save writes s, creating parent directories as needed.
func (f *FileStore) Save(s *Session) error {
	if !s.Valid() {
		return fmt.Errorf("%w: empty session", shared.ErrInvalidInput)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing a missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
