// Package discovery learns extension rules from an already organised directory tree.
package discovery

import (
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"sortly/internal/config"
	"sortly/internal/normalizer"
	"sortly/internal/scanner"
)

// DiscoveredRule is a rule inferred from where files of one extension live.
type DiscoveredRule struct {
	Rule  config.Rule
	Files int // files of this extension found in the chosen folder
}

// DiscoveryResult contains the results of a discovery scan.
type DiscoveryResult struct {
	NewRules      []DiscoveredRule // Rules to be added, in extension order
	SkippedRules  []DiscoveredRule // Extensions the rule set already covers
	ScannedDirs   int
	FilesAnalyzed int
	Warnings      []error
}

// census counts, for one extension in one candidate folder, where its files sit.
type census struct {
	total int
	year  int
	music int
}

// Options configures Discover.
type Options struct {
	Logger *slog.Logger
}

// Discover examines the immediate subdirectories of scanDir. Every extension
// found below them is assigned to the subdirectory holding most of its files;
// ties go to the first subdirectory in name order. The archive folder is ignored.
func Discover(scanDir string, existing config.RuleSet, opts Options) (*DiscoveryResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	candidates, err := scanner.Subdirectories(scanDir)
	if err != nil {
		return nil, err
	}

	result := &DiscoveryResult{
		NewRules:     []DiscoveredRule{},
		SkippedRules: []DiscoveredRule{},
	}
	counts := make(map[string]map[string]*census)

	for _, name := range candidates {
		if name == config.ArchiveFolderName {
			continue
		}
		result.ScannedDirs++

		scan, err := scanner.ScanWithOptions(filepath.Join(scanDir, name), scanner.ScanOptions{
			MaxDepth:      -1,
			SymlinkPolicy: scanner.SymlinkPolicySkip,
		})
		if err != nil {
			logger.Warn("skipping unreadable folder", "folder", name, "error", err)
			result.Warnings = append(result.Warnings, err)
			continue
		}
		result.Warnings = append(result.Warnings, scan.Warnings...)

		for _, file := range scan.Files {
			result.FilesAnalyzed++
			ext := normalizer.Extension(file.Name)
			if ext == "" {
				continue
			}
			byDir, ok := counts[ext]
			if !ok {
				byDir = make(map[string]*census)
				counts[ext] = byDir
			}
			c, ok := byDir[name]
			if !ok {
				c = &census{}
				byDir[name] = c
			}
			c.total++
			parent := parentFolder(file.RelPath)
			switch {
			case IsYearFolder(parent):
				c.year++
			case IsMusicTypeFolder(parent):
				c.music++
			}
		}
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	for _, ext := range exts {
		folder, c := dominant(candidates, counts[ext])
		rule := DiscoveredRule{
			Rule: config.Rule{
				Extension:  ext,
				BaseFolder: folder,
				Subfolder:  strategyFor(c),
			},
			Files: c.total,
		}
		if existing.Has(ext) {
			result.SkippedRules = append(result.SkippedRules, rule)
			continue
		}
		result.NewRules = append(result.NewRules, rule)
		logger.Debug("discovered rule", "extension", ext, "folder", folder, "subfolder", rule.Rule.Subfolder)
	}

	return result, nil
}

// dominant picks the folder with the most files. candidates is in name order,
// which makes the first maximum the tie winner.
func dominant(candidates []string, byDir map[string]*census) (string, *census) {
	var (
		best  string
		bestC *census
	)
	for _, name := range candidates {
		c, ok := byDir[name]
		if !ok {
			continue
		}
		if bestC == nil || c.total > bestC.total {
			best, bestC = name, c
		}
	}
	return best, bestC
}

// strategyFor returns year or music-type when a strict majority of the files
// sit in folders of that shape.
func strategyFor(c *census) config.Strategy {
	switch {
	case c.year*2 > c.total:
		return config.StrategyYear
	case c.music*2 > c.total:
		return config.StrategyMusicType
	default:
		return config.StrategyNone
	}
}

// Apply adds the accepted rules to rs and returns how many were added.
func Apply(rs config.RuleSet, accepted []DiscoveredRule) int {
	added := 0
	for _, d := range accepted {
		if rs.Add(d.Rule) {
			added++
		}
	}
	return added
}
