// Package scanner enumerates the candidate files of a sort root.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist or is not a directory.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// SymlinkError indicates a symlink was encountered with "error" policy.
	SymlinkError ScanErrorType = "SYMLINK_ERROR"
	// ReadFailed indicates a directory listing failed for another reason.
	ReadFailed ScanErrorType = "READ_FAILED"
)

// Symlink policy constants. Symlinked directories are never descended into.
const (
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
	SymlinkPolicyError  = "error"
)

// ParseSymlinkPolicy converts a settings value into a symlink policy.
// An empty value selects SymlinkPolicySkip.
func ParseSymlinkPolicy(value string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case "":
		return SymlinkPolicySkip, nil
	case SymlinkPolicyFollow, SymlinkPolicySkip, SymlinkPolicyError:
		return v, nil
	}
	return "", fmt.Errorf("unknown symlink policy %q (want skip, follow or error)", value)
}

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return string(e.Type) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	MaxDepth      int    // Maximum depth to scan (0 = immediate only, -1 = unlimited)
	SymlinkPolicy string // "follow", "skip", or "error"
	// Exclude lists absolute paths that are never returned (history and lock files).
	Exclude []string
}

// DefaultScanOptions returns the default scan options.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MaxDepth:      0,
		SymlinkPolicy: SymlinkPolicySkip,
	}
}

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name     string      // Filename only
	FullPath string      // Absolute path
	RelPath  string      // Path relative to the scanned root, slash separated
	Info     fs.FileInfo // Lstat result, or Stat for followed symlinks
}

// Result holds the files found plus the subdirectories that could not be read.
type Result struct {
	Files    []FileEntry
	Warnings []error
}

// Scan enumerates files in the given directory without recursion.
func Scan(directory string) (*Result, error) {
	return ScanWithOptions(directory, DefaultScanOptions())
}

// ScanWithOptions scans directory with configurable options. Entries are
// returned in directory order (sorted by name), depth first. A failure to read
// the root is an error; a failure to read a subdirectory is a warning.
func ScanWithOptions(directory string, opts ScanOptions) (*Result, error) {
	root, err := filepath.Abs(directory)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ScanError{Type: DirectoryNotFound, Path: root, Err: err}
		}
		if os.IsPermission(err) {
			return nil, &ScanError{Type: PermissionDenied, Path: root, Err: err}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, &ScanError{
			Type: DirectoryNotFound,
			Path: root,
			Err:  errors.New("path is not a directory"),
		}
	}

	s := &scan{
		root:    root,
		opts:    opts,
		exclude: make(map[string]bool, len(opts.Exclude)),
		result:  &Result{},
	}
	for _, p := range opts.Exclude {
		if abs, err := filepath.Abs(p); err == nil {
			s.exclude[abs] = true
		}
	}

	if err := s.dir(root, 0); err != nil {
		return nil, err
	}
	return s.result, nil
}

type scan struct {
	root    string
	opts    ScanOptions
	exclude map[string]bool
	result  *Result
}

func (s *scan) dir(directory string, depth int) error {
	entries, err := os.ReadDir(directory)
	if err != nil {
		scanErr := &ScanError{Type: ReadFailed, Path: directory, Err: err}
		if os.IsPermission(err) {
			scanErr.Type = PermissionDenied
		}
		if depth == 0 {
			return scanErr
		}
		s.result.Warnings = append(s.result.Warnings, scanErr)
		return nil
	}

	for _, entry := range entries {
		fullPath := filepath.Join(directory, entry.Name())
		if s.exclude[fullPath] {
			continue
		}

		info, err := os.Lstat(fullPath)
		if err != nil {
			continue // vanished since ReadDir
		}

		if info.Mode()&os.ModeSymlink != 0 {
			switch s.opts.SymlinkPolicy {
			case SymlinkPolicyError:
				return &ScanError{
					Type: SymlinkError,
					Path: fullPath,
					Err:  errors.New("symlink encountered with error policy"),
				}
			case SymlinkPolicyFollow:
				target, err := os.Stat(fullPath)
				if err != nil || !target.Mode().IsRegular() {
					continue
				}
				s.add(entry.Name(), fullPath, target)
			}
			continue
		}

		if info.IsDir() {
			if s.opts.MaxDepth == -1 || depth < s.opts.MaxDepth {
				if err := s.dir(fullPath, depth+1); err != nil {
					return err
				}
			}
			continue
		}

		if info.Mode().IsRegular() {
			s.add(entry.Name(), fullPath, info)
		}
	}
	return nil
}

func (s *scan) add(name, fullPath string, info fs.FileInfo) {
	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil {
		rel = name
	}
	s.result.Files = append(s.result.Files, FileEntry{
		Name:     name,
		FullPath: fullPath,
		RelPath:  filepath.ToSlash(rel),
		Info:     info,
	})
}

// Subdirectories returns the immediate, non-symlink subdirectories of directory in name order.
func Subdirectories(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		// DirEntry.IsDir reports false for symlinks to directories.
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}
