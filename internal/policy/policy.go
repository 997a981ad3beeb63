// Package policy decides what happens to directories that already exist in a sort root.
package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sortly/internal/config"
	"sortly/internal/mover"
	"sortly/internal/scanner"
)

// Behavior selects the pre-existing folder policy.
type Behavior string

const (
	LeaveAlone                 Behavior = "leave"
	SortExistingFolderContents Behavior = "sort-contents"
	ArchiveExistingFolders     Behavior = "archive"
)

// ParseBehavior converts a settings or flag value into a Behavior.
// The descriptive labels shown by older front ends are accepted too.
func ParseBehavior(value string) (Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "leave", "leave-alone", "leave pre-existing folders alone":
		return LeaveAlone, nil
	case "sort-contents", "recurse", "sort contents of pre-existing folders":
		return SortExistingFolderContents, nil
	case "archive", "move pre-existing folders to archive":
		return ArchiveExistingFolders, nil
	}
	return "", fmt.Errorf("unknown folder behavior %q (want leave, sort-contents or archive)", value)
}

// ArchivedFolder describes one directory moved into the archive.
type ArchivedFolder struct {
	Name        string // Original directory name
	Destination string // Absolute path inside the archive
	RelPath     string // Destination relative to the root, slash separated
	Files       int    // Regular files found under Destination after the move
}

// Outcome tells the caller how to enumerate files after the policy ran.
type Outcome struct {
	ScanDepth int // Maximum scan depth (-1 = unlimited)
	Archived  []ArchivedFolder
}

// Options tunes Apply.
type Options struct {
	// Protected lists absolute paths whose enclosing top-level directory must never be archived.
	Protected []string
	Logger    *slog.Logger
}

// PolicyError reports a failure while applying the policy.
type PolicyError struct {
	Path string
	Err  error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("apply folder policy at %s: %v", e.Path, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// Apply runs behavior against root. Folder moves go through exec and are
// recorded in its history, so they stay undoable even if Apply fails later.
func Apply(root string, rules config.RuleSet, behavior Behavior, exec *mover.Executor, opts Options) (*Outcome, error) {
	switch behavior {
	case LeaveAlone, "":
		return &Outcome{ScanDepth: 0}, nil
	case SortExistingFolderContents:
		return &Outcome{ScanDepth: -1}, nil
	case ArchiveExistingFolders:
		return archive(root, rules, exec, opts)
	default:
		return nil, &PolicyError{Path: root, Err: fmt.Errorf("unknown behavior %q", behavior)}
	}
}

func archive(root string, rules config.RuleSet, exec *mover.Executor, opts Options) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	candidates, err := ArchiveCandidates(root, rules, opts.Protected)
	if err != nil {
		return nil, &PolicyError{Path: root, Err: err}
	}

	outcome := &Outcome{ScanDepth: 0}
	if len(candidates) == 0 {
		return outcome, nil
	}

	// Created only when at least one folder moves.
	archiveDir := filepath.Join(root, config.ArchiveFolderName)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, &PolicyError{Path: archiveDir, Err: err}
	}

	for _, name := range candidates {
		path := filepath.Join(root, name)
		dest, err := exec.MoveFolder(path, archiveDir)
		if err != nil {
			return outcome, &PolicyError{Path: path, Err: err}
		}

		files, err := CountFiles(dest)
		if err != nil {
			logger.Warn("cannot count archived files", "path", dest, "error", err)
		}
		rel, _ := filepath.Rel(root, dest)
		outcome.Archived = append(outcome.Archived, ArchivedFolder{
			Name:        name,
			Destination: dest,
			RelPath:     filepath.ToSlash(rel),
			Files:       files,
		})
		logger.Info("archived folder", "folder", name, "files", files)
	}

	return outcome, nil
}

// ArchiveCandidates returns the names of the top-level directories of root that
// the archive behavior would move, in name order. Symlinks are not directories here.
func ArchiveCandidates(root string, rules config.RuleSet, protected []string) ([]string, error) {
	dirs, err := scanner.Subdirectories(root)
	if err != nil {
		return nil, err
	}

	owned := rules.TopLevelFolders()
	var out []string
	for _, name := range dirs {
		if name == config.ArchiveFolderName || owned[name] {
			continue
		}
		if protects(filepath.Join(root, name), protected) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// protects reports whether any protected path lies inside dir.
func protects(dir string, protected []string) bool {
	for _, p := range protected {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// CountFiles counts the regular files below dir.
func CountFiles(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	return count, err
}
