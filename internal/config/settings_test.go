package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	settings, found, err := LoadSettings(filepath.Join(t.TempDir(), "sortly.toml"))
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if found {
		t.Error("found should be false for a missing file")
	}
	if settings.HistoryPath != filepath.Join("logs", "move_history.json") {
		t.Errorf("HistoryPath = %q", settings.HistoryPath)
	}
	if settings.Collision != "overwrite" {
		t.Errorf("Collision = %q", settings.Collision)
	}
	if settings.Symlinks != "skip" {
		t.Errorf("Symlinks = %q", settings.Symlinks)
	}
}

func TestLoadSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sortly.toml")
	content := `behavior = "archive"
collision = "rename"

[logging]
level = "debug"

[watch]
ignore_patterns = ["*.tmp"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, found, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if !found {
		t.Error("found should be true")
	}
	if settings.Behavior != "archive" || settings.Collision != "rename" {
		t.Errorf("unexpected settings: %+v", settings)
	}
	if settings.Logging.Level != "debug" || settings.Logging.Format != "text" {
		t.Errorf("unexpected logging: %+v", settings.Logging)
	}
	if settings.Watch.DebounceSeconds != 2 || len(settings.Watch.IgnorePatterns) != 1 {
		t.Errorf("unexpected watch: %+v", settings.Watch)
	}
	if settings.ConfigDir != "configs" {
		t.Errorf("ConfigDir = %q", settings.ConfigDir)
	}
}

func TestLoadSettingsRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sortly.toml")
	if err := os.WriteFile(path, []byte(`collision = "merge"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadSettings(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadSettingsSymlinks(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.toml")
	if err := os.WriteFile(good, []byte(`symlinks = "follow"`), 0o644); err != nil {
		t.Fatal(err)
	}
	settings, _, err := LoadSettings(good)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.Symlinks != "follow" {
		t.Errorf("Symlinks = %q, want follow", settings.Symlinks)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte(`symlinks = "sideways"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadSettings(bad); err == nil {
		t.Error("expected validation error for unknown symlink policy")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sortly.toml")
	if err := CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := CreateSample(path, false); err == nil {
		t.Error("CreateSample should refuse to overwrite")
	}
	if err := CreateSample(path, true); err != nil {
		t.Errorf("CreateSample with force failed: %v", err)
	}

	settings, found, err := LoadSettings(path)
	if err != nil || !found {
		t.Fatalf("sample does not load: found=%v err=%v", found, err)
	}
	if settings.Behavior != "leave" {
		t.Errorf("Behavior = %q", settings.Behavior)
	}
}
