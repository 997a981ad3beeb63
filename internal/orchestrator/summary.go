package orchestrator

import (
	"path/filepath"
	"sort"
	"strings"
)

// Summary maps a destination directory, relative to the sort root and slash
// separated, to the number of files placed there. Archived folders appear under
// "Archived_Folders/<name>" with the number of files they contain.
type Summary map[string]int

// Add increments the count for key by n.
func (s Summary) Add(key string, n int) {
	s[key] += n
}

// Keys returns the summary keys in sorted order.
func (s Summary) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total returns the sum of all counts.
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// summaryKey returns dir relative to root, slash separated. Directories outside
// the root keep their absolute path.
func summaryKey(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(dir)
	}
	return filepath.ToSlash(rel)
}
