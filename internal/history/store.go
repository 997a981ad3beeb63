package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"sortly/internal/fsx"
)

var (
	// ErrNoHistory is returned when there is no persisted history to undo.
	ErrNoHistory = errors.New("no move history found")
	// ErrHistoryLocked is returned when another pass holds the history lock.
	ErrHistoryLocked = errors.New("another sort or undo pass is running")
)

// Store persists the history of the latest pass as a JSON array.
type Store struct {
	path string
}

// NewStore creates a Store for the history file at path.
func NewStore(path string) *Store {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Store{path: path}
}

// Path returns the absolute path of the history file.
func (s *Store) Path() string {
	return s.path
}

// LockPath returns the path of the lock file guarding the history.
func (s *Store) LockPath() string {
	return s.path + ".lock"
}

// Exists reports whether a persisted history is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Save replaces the persisted history with h.
func (s *Store) Save(h *MoveHistory) error {
	records := h.Records()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := fsx.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", s.path, err)
	}
	return nil
}

// Load reads the persisted history. A missing file yields ErrNoHistory.
func (s *Store) Load() (*MoveHistory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoHistory
		}
		return nil, fmt.Errorf("read history %s: %w", s.path, err)
	}

	var records []MoveRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", s.path, err)
	}
	return &MoveHistory{records: records}, nil
}

// Delete removes the persisted history. Deleting a missing history is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Lock takes the exclusive pass lock. The returned function releases it.
func (s *Store) Lock() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	lock := flock.New(s.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !ok {
		return nil, ErrHistoryLocked
	}
	return lock.Unlock, nil
}
