// Package config handles rule sets and application settings for Sortly.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"sortly/internal/normalizer"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidFormat   ConfigErrorType = "INVALID_FORMAT"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
	WriteFailed     ConfigErrorType = "WRITE_FAILED"
)

// ConfigError represents an error that occurred during configuration loading or saving.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidFormat:
		return fmt.Sprintf("invalid configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	case WriteFailed:
		return fmt.Sprintf("failed to write configuration file %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Strategy selects the extra path segment placed under a rule's base folder.
type Strategy string

const (
	StrategyNone      Strategy = "none"
	StrategyYear      Strategy = "year"
	StrategyMusicType Strategy = "music-type"
)

// ParseStrategy converts a persisted subfolder value into a Strategy.
// "musictype" is accepted as an alias written by older rule files.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "null":
		return StrategyNone, nil
	case "year":
		return StrategyYear, nil
	case "music-type", "musictype", "music_type":
		return StrategyMusicType, nil
	default:
		return StrategyNone, fmt.Errorf("unknown subfolder strategy %q (want year, music-type or none)", value)
	}
}

// Rule maps one file extension to a destination base folder and subfolder strategy.
type Rule struct {
	Extension  string
	BaseFolder string
	Subfolder  Strategy
}

// RuleSet maps a normalised extension to its Rule. Lookup is by key only.
type RuleSet map[string]Rule

// ruleEntry is the persisted shape of a single rule.
type ruleEntry struct {
	Folder    string  `json:"folder" yaml:"folder"`
	Subfolder *string `json:"subfolder" yaml:"subfolder"`
}

// Lookup returns the rule registered for ext. The extension is normalised first,
// so ".JPG", "jpg" and ".jpg" all resolve to the same rule.
func (rs RuleSet) Lookup(ext string) (Rule, bool) {
	key := normalizer.NormalizeExtension(ext)
	if key == "" {
		return Rule{}, false
	}
	rule, ok := rs[key]
	return rule, ok
}

// Has reports whether a rule exists for ext (case-insensitive).
func (rs RuleSet) Has(ext string) bool {
	_, ok := rs.Lookup(ext)
	return ok
}

// Set adds or replaces the rule for rule.Extension and returns the stored rule.
func (rs RuleSet) Set(rule Rule) Rule {
	rule.Extension = normalizer.NormalizeExtension(rule.Extension)
	if rule.Subfolder == "" {
		rule.Subfolder = StrategyNone
	}
	rs[rule.Extension] = rule
	return rule
}

// Add adds a rule only if its extension is not present yet.
// Returns true if the rule was added, false if it was a duplicate.
func (rs RuleSet) Add(rule Rule) bool {
	if rs.Has(rule.Extension) {
		return false
	}
	rs.Set(rule)
	return true
}

// Remove deletes the rule for ext. Returns false if no such rule existed.
func (rs RuleSet) Remove(ext string) bool {
	key := normalizer.NormalizeExtension(ext)
	if _, ok := rs[key]; !ok {
		return false
	}
	delete(rs, key)
	return true
}

// Extensions returns the rule keys in sorted order.
func (rs RuleSet) Extensions() []string {
	keys := make([]string, 0, len(rs))
	for ext := range rs {
		keys = append(keys, ext)
	}
	sort.Strings(keys)
	return keys
}

// BaseFolders returns the distinct base folders named by the rules.
func (rs RuleSet) BaseFolders() map[string]bool {
	folders := make(map[string]bool, len(rs))
	for _, rule := range rs {
		folders[rule.BaseFolder] = true
	}
	return folders
}

// Clone returns an independent copy of the rule set.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for k, v := range rs {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the persisted form: {".ext": {"folder": ..., "subfolder": ...|null}}.
func (rs RuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.entries())
}

// UnmarshalJSON reads the persisted form, normalising every key.
func (rs *RuleSet) UnmarshalJSON(data []byte) error {
	var entries map[string]ruleEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	parsed, err := fromEntries(entries)
	if err != nil {
		return err
	}
	*rs = parsed
	return nil
}

func (rs RuleSet) entries() map[string]ruleEntry {
	entries := make(map[string]ruleEntry, len(rs))
	for ext, rule := range rs {
		entry := ruleEntry{Folder: rule.BaseFolder}
		if rule.Subfolder != StrategyNone && rule.Subfolder != "" {
			s := string(rule.Subfolder)
			entry.Subfolder = &s
		}
		entries[ext] = entry
	}
	return entries
}

func fromEntries(entries map[string]ruleEntry) (RuleSet, error) {
	rs := make(RuleSet, len(entries))
	for ext, entry := range entries {
		key := normalizer.NormalizeExtension(ext)
		if key == "" {
			return nil, fmt.Errorf("rule key %q is not a file extension", ext)
		}
		strategy := StrategyNone
		if entry.Subfolder != nil {
			s, err := ParseStrategy(*entry.Subfolder)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", key, err)
			}
			strategy = s
		}
		rs[key] = Rule{
			Extension:  key,
			BaseFolder: strings.TrimSpace(entry.Folder),
			Subfolder:  strategy,
		}
	}
	return rs, nil
}

// DefaultRules returns the built-in rule set used when no rule file exists.
func DefaultRules() RuleSet {
	rs := RuleSet{}
	for _, r := range []Rule{
		{Extension: ".pdf", BaseFolder: "PDFs", Subfolder: StrategyYear},
		{Extension: ".jpg", BaseFolder: "Images", Subfolder: StrategyYear},
		{Extension: ".jpeg", BaseFolder: "Images", Subfolder: StrategyYear},
		{Extension: ".png", BaseFolder: "Images", Subfolder: StrategyYear},
		{Extension: ".docx", BaseFolder: "TextFiles", Subfolder: StrategyYear},
		{Extension: ".txt", BaseFolder: "TextFiles", Subfolder: StrategyNone},
		{Extension: ".mp3", BaseFolder: "Audio", Subfolder: StrategyMusicType},
		{Extension: ".url", BaseFolder: "Internet Shortcuts", Subfolder: StrategyNone},
		{Extension: ".exe", BaseFolder: "Installers", Subfolder: StrategyNone},
		{Extension: ".msi", BaseFolder: "Installers", Subfolder: StrategyNone},
		{Extension: ".lnk", BaseFolder: "Shortcuts", Subfolder: StrategyNone},
	} {
		rs.Set(r)
	}
	return rs
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadRuleSet reads a rule set from a JSON file, or a YAML file when the path ends in .yaml/.yml.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Type: FileNotFound, Path: path, Err: err}
		}
		return nil, &ConfigError{Type: FileNotFound, Path: path, Message: err.Error(), Err: err}
	}

	var entries map[string]ruleEntry
	if isYAML(path) {
		err = yaml.Unmarshal(data, &entries)
	} else {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, &ConfigError{Type: InvalidFormat, Path: path, Message: err.Error(), Err: err}
	}

	rs, err := fromEntries(entries)
	if err != nil {
		return nil, &ConfigError{Type: InvalidFormat, Path: path, Message: err.Error(), Err: err}
	}
	return rs, nil
}

// SaveRuleSet serializes a rule set to path, choosing YAML or JSON by extension.
func SaveRuleSet(rs RuleSet, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(rs.entries())
	} else {
		data, err = json.MarshalIndent(rs.entries(), "", "  ")
	}
	if err != nil {
		return &ConfigError{Type: InvalidFormat, Path: path, Message: err.Error(), Err: err}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ConfigError{Type: WriteFailed, Path: path, Message: err.Error(), Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &ConfigError{Type: WriteFailed, Path: path, Message: err.Error(), Err: err}
	}
	return nil
}
