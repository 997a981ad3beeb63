// Package matcher handles filename-to-rule matching for Sortly.
package matcher

import (
	"sortly/internal/config"
	"sortly/internal/normalizer"
)

// MatchResult represents the result of matching a filename against a rule set.
type MatchResult struct {
	Matched   bool
	Rule      config.Rule
	Extension string // Normalised extension of the filename ("" when it has none)
}

// Match resolves a filename to its rule by exact, case-insensitive extension lookup.
// Files without an extension, or whose extension has no rule, are not matched.
func Match(filename string, rules config.RuleSet) *MatchResult {
	ext := normalizer.Extension(filename)
	if ext == "" || len(rules) == 0 {
		return &MatchResult{Matched: false, Extension: ext}
	}

	rule, ok := rules.Lookup(ext)
	if !ok {
		return &MatchResult{Matched: false, Extension: ext}
	}

	return &MatchResult{
		Matched:   true,
		Rule:      rule,
		Extension: ext,
	}
}
