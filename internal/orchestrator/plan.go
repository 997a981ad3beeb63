package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sortly/internal/config"
	"sortly/internal/fsx"
	"sortly/internal/history"
	"sortly/internal/policy"
	"sortly/internal/scanner"
)

// PlannedMove is one move a pass would make.
type PlannedMove struct {
	Source      string
	Destination string
	Kind        history.Kind
	// Occupied is true when something already exists at Destination.
	Occupied bool
}

// PlanResult contains the dry-run analysis of a pass.
type PlanResult struct {
	Root     string
	Moves    []PlannedMove
	Summary  Summary
	Errors   []*SortError
	Warnings []error
	Skipped  int
}

// Plan computes the moves Sort would make without modifying anything.
// Destinations assume every earlier planned move succeeded; collision renames
// are not resolved, Occupied marks them instead.
func (e *SortEngine) Plan(ctx context.Context, root string, rules config.RuleSet, behavior policy.Behavior) (*PlanResult, error) {
	root, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{Root: root, Summary: Summary{}}
	depth := 0

	switch behavior {
	case policy.LeaveAlone, "":
	case policy.SortExistingFolderContents:
		depth = -1
	case policy.ArchiveExistingFolders:
		archiveDir := filepath.Join(root, config.ArchiveFolderName)
		names, err := policy.ArchiveCandidates(root, rules, e.protectedPaths())
		if err != nil {
			return nil, &SortError{Kind: PolicyFailure, Path: root, Err: err}
		}
		if info, err := os.Stat(archiveDir); err == nil && !info.IsDir() && len(names) > 0 {
			return nil, &SortError{Kind: PolicyFailure, Path: archiveDir, Err: errors.New("archive path is not a directory")}
		}
		for _, name := range names {
			src := filepath.Join(root, name)
			dest := filepath.Join(archiveDir, name)
			files, _ := policy.CountFiles(src)
			result.Moves = append(result.Moves, PlannedMove{
				Source:      src,
				Destination: dest,
				Kind:        history.KindFolder,
				Occupied:    fsx.Exists(dest),
			})
			result.Summary.Add(summaryKey(root, dest), files)
		}
	default:
		return nil, &SortError{Kind: PolicyFailure, Path: root, Err: &policy.PolicyError{
			Path: root,
			Err:  fmt.Errorf("unknown behavior %q", behavior),
		}}
	}

	scan, err := scanner.ScanWithOptions(root, scanner.ScanOptions{
		MaxDepth:      depth,
		SymlinkPolicy: e.symlinkPolicy,
		Exclude:       []string{e.store.Path(), e.store.LockPath()},
	})
	if err != nil {
		return nil, &SortError{Kind: ScanFailure, Path: root, Err: err}
	}
	result.Warnings = append(result.Warnings, scan.Warnings...)

	for _, file := range scan.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res, sortErr := e.resolve(root, file, rules)
		if sortErr != nil {
			result.Errors = append(result.Errors, sortErr)
			continue
		}
		if res == nil {
			continue
		}
		if res.notice != nil {
			result.Warnings = append(result.Warnings, res.notice)
		}
		if res.inPlace(file) {
			result.Skipped++
			continue
		}

		result.Moves = append(result.Moves, PlannedMove{
			Source:      file.FullPath,
			Destination: res.dest,
			Kind:        history.KindFile,
			Occupied:    fsx.Exists(res.dest),
		})
		result.Summary.Add(summaryKey(root, filepath.Dir(res.dest)), 1)
	}

	return result, nil
}
