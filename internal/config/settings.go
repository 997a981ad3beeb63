package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultSettingsFile is looked up in the working directory when no path is given.
const DefaultSettingsFile = "sortly.toml"

// Logging contains logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Watch contains watch mode settings.
type Watch struct {
	DebounceSeconds   int      `toml:"debounce_seconds"`
	StableThresholdMs int      `toml:"stable_threshold_ms"`
	IgnorePatterns    []string `toml:"ignore_patterns"`
}

// Settings holds application-level options. Every key is optional.
type Settings struct {
	HistoryPath  string  `toml:"history_path"`
	ConfigDir    string  `toml:"config_dir"`
	ActiveConfig string  `toml:"active_config"`
	Behavior     string  `toml:"behavior"`
	Collision    string  `toml:"collision"`
	YearSource   string  `toml:"year_source"`
	Symlinks     string  `toml:"symlinks"`
	Logging      Logging `toml:"logging"`
	Watch        Watch   `toml:"watch"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		HistoryPath:  filepath.Join("logs", "move_history.json"),
		ConfigDir:    "configs",
		ActiveConfig: DefaultConfigName,
		Behavior:     "leave",
		Collision:    "overwrite",
		YearSource:   "filesystem",
		Symlinks:     "skip",
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Watch: Watch{
			DebounceSeconds:   2,
			StableThresholdMs: 1000,
		},
	}
}

// LoadSettings reads settings from path. An empty path means DefaultSettingsFile;
// a missing file yields defaults. The second return value reports whether a file was read.
func LoadSettings(path string) (*Settings, bool, error) {
	settings := DefaultSettings()
	if strings.TrimSpace(path) == "" {
		path = DefaultSettingsFile
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &settings, false, nil
		}
		return nil, false, &ConfigError{Type: FileNotFound, Path: path, Message: err.Error(), Err: err}
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(&settings); err != nil {
		return nil, false, &ConfigError{Type: InvalidFormat, Path: path, Message: err.Error(), Err: err}
	}

	settings.applyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, false, err
	}
	return &settings, true, nil
}

// applyDefaults fills zero values left by a partial settings file.
func (s *Settings) applyDefaults() {
	defaults := DefaultSettings()

	if s.HistoryPath == "" {
		s.HistoryPath = defaults.HistoryPath
	}
	if s.ConfigDir == "" {
		s.ConfigDir = defaults.ConfigDir
	}
	if s.ActiveConfig == "" {
		s.ActiveConfig = defaults.ActiveConfig
	}
	if s.Behavior == "" {
		s.Behavior = defaults.Behavior
	}
	if s.Collision == "" {
		s.Collision = defaults.Collision
	}
	if s.YearSource == "" {
		s.YearSource = defaults.YearSource
	}
	if s.Symlinks == "" {
		s.Symlinks = defaults.Symlinks
	}
	if s.Logging.Level == "" {
		s.Logging.Level = defaults.Logging.Level
	}
	if s.Logging.Format == "" {
		s.Logging.Format = defaults.Logging.Format
	}
	if s.Watch.DebounceSeconds == 0 {
		s.Watch.DebounceSeconds = defaults.Watch.DebounceSeconds
	}
	if s.Watch.StableThresholdMs == 0 {
		s.Watch.StableThresholdMs = defaults.Watch.StableThresholdMs
	}
}

// Validate checks enumerated settings values.
func (s *Settings) Validate() error {
	checks := []struct {
		field string
		value string
		valid []string
	}{
		{"behavior", s.Behavior, []string{"leave", "sort-contents", "archive"}},
		{"collision", s.Collision, []string{"overwrite", "fail", "rename"}},
		{"year_source", s.YearSource, []string{"filesystem", "exif"}},
		{"symlinks", s.Symlinks, []string{"skip", "follow", "error"}},
		{"logging.format", s.Logging.Format, []string{"text", "logfmt", "json"}},
	}
	for _, c := range checks {
		if !contains(c.valid, strings.ToLower(c.value)) {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("%s: invalid value %q (want one of %s)", c.field, c.value, strings.Join(c.valid, ", ")),
			}
		}
	}
	if s.Watch.DebounceSeconds < 0 {
		return &ConfigError{Type: ValidationError, Message: "watch.debounce_seconds must not be negative"}
	}
	if s.Watch.StableThresholdMs < 0 {
		return &ConfigError{Type: ValidationError, Message: "watch.stable_threshold_ms must not be negative"}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// CreateSample writes the default settings to path. It refuses to overwrite unless force is set.
func CreateSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("settings file already exists at %s", path)
		}
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
