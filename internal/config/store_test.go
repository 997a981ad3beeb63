package config

import (
	"errors"
	"os"
	"reflect"
	"testing"
)

func TestStoreLoadMissingDefaultYieldsDefaultRules(t *testing.T) {
	store := NewStore(t.TempDir())

	rs, err := store.Load(DefaultConfigName)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(rs, DefaultRules()) {
		t.Errorf("expected default rules, got %+v", rs)
	}
}

func TestStoreCreateListDelete(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.Create("photos"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create("photos"); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second Create: expected ErrConfigExists, got %v", err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"default", "photos"}) {
		t.Errorf("List = %v", names)
	}

	if err := store.Delete(DefaultConfigName); !errors.Is(err, ErrDefaultConfig) {
		t.Errorf("deleting default: expected ErrDefaultConfig, got %v", err)
	}
	if err := store.Delete("photos"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(store.Path("photos")); !os.IsNotExist(err) {
		t.Errorf("rule set file still present: %v", err)
	}
}

func TestStoreSaveAndReset(t *testing.T) {
	store := NewStore(t.TempDir())

	rs := RuleSet{}
	rs.Set(Rule{Extension: ".csv", BaseFolder: "Data"})
	if err := store.Save("work", rs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load("work")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, rs) {
		t.Errorf("loaded %+v, want %+v", loaded, rs)
	}

	reset, err := store.Reset("work")
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if !reflect.DeepEqual(reset, DefaultRules()) {
		t.Errorf("Reset did not restore defaults")
	}
}

func TestStoreRejectsPathNames(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, name := range []string{"", "../evil", "a/b", ".."} {
		if _, err := store.Load(name); err == nil {
			t.Errorf("Load(%q) should fail", name)
		}
	}
}
