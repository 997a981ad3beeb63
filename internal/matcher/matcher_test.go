package matcher

import (
	"strings"
	"testing"
	"unicode"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"sortly/internal/config"
)

// Property: Case-insensitive extension matching

// randomizeCase applies random casing to a string
func randomizeCase(s string, seed int64) string {
	runes := []rune(s)
	for i := range runes {
		if (seed>>uint(i%64))&1 == 1 {
			runes[i] = unicode.ToUpper(runes[i])
		} else {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

// genNonEmptyAlphaString generates non-empty alphabetic strings
func genNonEmptyAlphaString() gopter.Gen {
	return gen.AlphaString().SuchThat(func(s string) bool {
		return len(s) > 0
	})
}

// genRule generates a valid Rule with a lower-case extension
func genRule() gopter.Gen {
	return gopter.CombineGens(
		genNonEmptyAlphaString(),
		genNonEmptyAlphaString(),
	).Map(func(vals []interface{}) config.Rule {
		return config.Rule{
			Extension:  "." + strings.ToLower(vals[0].(string)),
			BaseFolder: vals[1].(string),
			Subfolder:  config.StrategyNone,
		}
	})
}

// genCasingVariation generates a random casing variation seed
func genCasingVariation() gopter.Gen {
	return gen.Int64()
}

func TestCaseInsensitiveExtensionMatching(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("Match succeeds regardless of extension casing", prop.ForAll(
		func(rule config.Rule, base string, casingSeed int64) bool {
			filename := base + randomizeCase(rule.Extension, casingSeed)

			rules := config.RuleSet{}
			rules.Set(rule)
			result := Match(filename, rules)

			if !result.Matched {
				t.Logf("Expected match for filename %q with extension %q", filename, rule.Extension)
				return false
			}
			if result.Rule.BaseFolder != rule.BaseFolder {
				t.Logf("Expected base folder %q, got %q", rule.BaseFolder, result.Rule.BaseFolder)
				return false
			}
			return true
		},
		genRule(),
		genNonEmptyAlphaString(),
		genCasingVariation(),
	))

	properties.TestingRun(t)
}

func TestPhotoJPGAndPhotoJpgResolveToSameRule(t *testing.T) {
	rules := config.DefaultRules()

	upper := Match("Photo.JPG", rules)
	lower := Match("photo.jpg", rules)

	if !upper.Matched || !lower.Matched {
		t.Fatalf("expected both to match: %+v %+v", upper, lower)
	}
	if upper.Rule != lower.Rule {
		t.Errorf("rules differ: %+v vs %+v", upper.Rule, lower.Rule)
	}
}

func TestNoMatch(t *testing.T) {
	rules := config.DefaultRules()

	tests := []struct {
		filename string
		wantExt  string
	}{
		{"Makefile", ""},
		{".bashrc", ""},
		{"archive.tar.gz", ".gz"},
		{"notes.md", ".md"},
	}
	for _, tt := range tests {
		result := Match(tt.filename, rules)
		if result.Matched {
			t.Errorf("Match(%q) unexpectedly matched %+v", tt.filename, result.Rule)
		}
		if result.Extension != tt.wantExt {
			t.Errorf("Match(%q).Extension = %q, want %q", tt.filename, result.Extension, tt.wantExt)
		}
	}
}

func TestMatchEmptyRuleSet(t *testing.T) {
	if Match("report.pdf", nil).Matched {
		t.Error("nil rule set must not match")
	}
}
