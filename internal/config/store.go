package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultConfigName is the rule set that always exists and cannot be deleted.
const DefaultConfigName = "default"

// ErrConfigExists is returned when creating a named rule set that is already present.
var ErrConfigExists = errors.New("rule set already exists")

// ErrDefaultConfig is returned when attempting to delete the default rule set.
var ErrDefaultConfig = errors.New("the default rule set cannot be deleted")

// Store manages named rule sets kept as <dir>/<name>.json.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the rule set files.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of the named rule set.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func validName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ConfigError{Type: ValidationError, Message: "rule set name cannot be empty"}
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return &ConfigError{Type: ValidationError, Message: fmt.Sprintf("invalid rule set name %q", name)}
	}
	return nil
}

// List returns the names of all stored rule sets, sorted. The default rule set
// is always included even when it has not been written yet.
func (s *Store) List() ([]string, error) {
	names := map[string]bool{DefaultConfigName: true}

	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names[strings.TrimSuffix(entry.Name(), ".json")] = true
	}

	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Load reads the named rule set. A missing file yields the built-in default rules.
func (s *Store) Load(name string) (RuleSet, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	rs, err := LoadRuleSet(s.Path(name))
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Type == FileNotFound && errors.Is(err, os.ErrNotExist) {
			return DefaultRules(), nil
		}
		return nil, err
	}
	return rs, nil
}

// Save writes the named rule set, replacing any previous content.
func (s *Store) Save(name string, rs RuleSet) error {
	if err := validName(name); err != nil {
		return err
	}
	return SaveRuleSet(rs, s.Path(name))
}

// Create writes a new rule set seeded with the default rules.
// It fails with ErrConfigExists if the name is taken.
func (s *Store) Create(name string) (RuleSet, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path(name)); err == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrConfigExists)
	}
	rs := DefaultRules()
	if err := s.Save(name, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Delete removes a named rule set. The default rule set is protected.
func (s *Store) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if name == DefaultConfigName {
		return ErrDefaultConfig
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Reset overwrites the named rule set with the default rules.
func (s *Store) Reset(name string) (RuleSet, error) {
	rs := DefaultRules()
	if err := s.Save(name, rs); err != nil {
		return nil, err
	}
	return rs, nil
}
