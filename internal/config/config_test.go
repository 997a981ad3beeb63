package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: Rule set JSON round-trip

// genNonEmptyString generates non-empty strings for configuration fields.
func genNonEmptyString() gopter.Gen {
	return gen.AlphaString().SuchThat(func(s string) bool {
		return len(s) > 0
	})
}

// genRule generates a valid Rule.
func genRule() gopter.Gen {
	return gopter.CombineGens(
		genNonEmptyString(),
		genNonEmptyString(),
		gen.OneConstOf(StrategyNone, StrategyYear, StrategyMusicType),
	).Map(func(vals []interface{}) Rule {
		return Rule{
			Extension:  "." + strings.ToLower(vals[0].(string)),
			BaseFolder: vals[1].(string),
			Subfolder:  vals[2].(Strategy),
		}
	})
}

// genRuleSet generates a RuleSet from a slice of rules (later duplicates win).
func genRuleSet() gopter.Gen {
	return gen.SliceOfN(5, genRule()).Map(func(rules []Rule) RuleSet {
		rs := RuleSet{}
		for _, r := range rules {
			rs.Set(r)
		}
		return rs
	})
}

func TestRuleSetRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("Saving then loading a rule set yields an equivalent rule set", prop.ForAll(
		func(rs RuleSet) bool {
			dir, err := os.MkdirTemp("", "sortly-config-*")
			if err != nil {
				t.Logf("Failed to create temp dir: %v", err)
				return false
			}
			defer os.RemoveAll(dir)

			path := filepath.Join(dir, "rules.json")
			if err := SaveRuleSet(rs, path); err != nil {
				t.Logf("Failed to save: %v", err)
				return false
			}

			loaded, err := LoadRuleSet(path)
			if err != nil {
				t.Logf("Failed to load: %v", err)
				return false
			}

			if !reflect.DeepEqual(rs, loaded) {
				t.Logf("Round trip mismatch:\noriginal: %+v\nloaded:   %+v", rs, loaded)
				return false
			}
			return true
		},
		genRuleSet(),
	))

	properties.TestingRun(t)
}

func TestUnmarshalPersistedForm(t *testing.T) {
	data := []byte(`{
  ".PDF": {"folder": "PDFs", "subfolder": "year"},
  "mp3": {"folder": "Audio", "subfolder": "musictype"},
  ".txt": {"folder": "TextFiles", "subfolder": null},
  ".lnk": {"folder": "Shortcuts"}
}`)

	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := RuleSet{
		".pdf": {Extension: ".pdf", BaseFolder: "PDFs", Subfolder: StrategyYear},
		".mp3": {Extension: ".mp3", BaseFolder: "Audio", Subfolder: StrategyMusicType},
		".txt": {Extension: ".txt", BaseFolder: "TextFiles", Subfolder: StrategyNone},
		".lnk": {Extension: ".lnk", BaseFolder: "Shortcuts", Subfolder: StrategyNone},
	}
	if !reflect.DeepEqual(rs, want) {
		t.Errorf("got %+v, want %+v", rs, want)
	}
}

func TestMarshalWritesNullForNoSubfolder(t *testing.T) {
	rs := RuleSet{}
	rs.Set(Rule{Extension: ".txt", BaseFolder: "TextFiles"})

	data, err := json.Marshal(rs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{".txt":{"folder":"TextFiles","subfolder":null}}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestUnmarshalRejectsUnknownStrategy(t *testing.T) {
	var rs RuleSet
	err := json.Unmarshal([]byte(`{".pdf": {"folder": "PDFs", "subfolder": "month"}}`), &rs)
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	rs := DefaultRules()

	for _, ext := range []string{".JPG", ".jpg", "jpg", ".Jpg"} {
		rule, ok := rs.Lookup(ext)
		if !ok {
			t.Fatalf("Lookup(%q) found nothing", ext)
		}
		if rule.BaseFolder != "Images" {
			t.Errorf("Lookup(%q) = %q, want Images", ext, rule.BaseFolder)
		}
	}

	if _, ok := rs.Lookup(""); ok {
		t.Error("empty extension must not match")
	}
}

func TestRuleSetAddRemove(t *testing.T) {
	rs := RuleSet{}
	if !rs.Add(Rule{Extension: "PDF", BaseFolder: "Docs"}) {
		t.Fatal("first Add should succeed")
	}
	if rs.Add(Rule{Extension: ".pdf", BaseFolder: "Other"}) {
		t.Error("second Add with same extension should be rejected")
	}
	if got := rs[".pdf"].BaseFolder; got != "Docs" {
		t.Errorf("BaseFolder = %q, want Docs", got)
	}
	if !rs.Remove(".PDF") {
		t.Error("Remove should report removal")
	}
	if rs.Remove(".pdf") {
		t.Error("Remove of missing rule should report false")
	}
}

func TestLoadRuleSetYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `.jpg:
  folder: Images
  subfolder: year
.txt:
  folder: Notes
  subfolder: null
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := LoadRuleSet(path)
	if err != nil {
		t.Fatalf("LoadRuleSet failed: %v", err)
	}
	if rs[".jpg"].Subfolder != StrategyYear || rs[".jpg"].BaseFolder != "Images" {
		t.Errorf("unexpected .jpg rule: %+v", rs[".jpg"])
	}
	if rs[".txt"].Subfolder != StrategyNone {
		t.Errorf("unexpected .txt rule: %+v", rs[".txt"])
	}

	out := filepath.Join(dir, "copy.yml")
	if err := SaveRuleSet(rs, out); err != nil {
		t.Fatalf("SaveRuleSet yaml failed: %v", err)
	}
	again, err := LoadRuleSet(out)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reflect.DeepEqual(rs, again) {
		t.Errorf("yaml round trip mismatch: %+v vs %+v", rs, again)
	}
}

func TestLoadRuleSetErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRuleSet(filepath.Join(dir, "missing.json"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Type != FileNotFound {
		t.Errorf("expected FileNotFound, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadRuleSet(bad)
	if !errors.As(err, &cfgErr) || cfgErr.Type != InvalidFormat {
		t.Errorf("expected InvalidFormat, got %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyNone, false},
		{"None", StrategyNone, false},
		{"year", StrategyYear, false},
		{"Year", StrategyYear, false},
		{"music-type", StrategyMusicType, false},
		{"musictype", StrategyMusicType, false},
		{"MusicType", StrategyMusicType, false},
		{"decade", StrategyNone, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
