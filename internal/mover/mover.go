// Package mover performs single relocations and records them in the pass history.
package mover

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sortly/internal/fsx"
	"sortly/internal/history"
)

// MoveErrorType represents the type of move error.
type MoveErrorType string

const (
	// SourceNotFound indicates the source does not exist.
	SourceNotFound MoveErrorType = "SOURCE_NOT_FOUND"
	// DestinationExists indicates the target name is taken and the policy forbids replacing it.
	DestinationExists MoveErrorType = "DESTINATION_EXISTS"
	// DestinationIsDirectory indicates a directory occupies the target name of a file move.
	DestinationIsDirectory MoveErrorType = "DESTINATION_IS_DIRECTORY"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied MoveErrorType = "PERMISSION_DENIED"
	// CrossDevice indicates a folder could not be moved across filesystems.
	CrossDevice MoveErrorType = "CROSS_DEVICE"
	// CreateDirFailed indicates the destination directory could not be created.
	CreateDirFailed MoveErrorType = "CREATE_DIR_FAILED"
	// MoveFailed covers any other rename failure.
	MoveFailed MoveErrorType = "MOVE_FAILED"
)

// MoveError represents an error that occurred during a move.
type MoveError struct {
	Type MoveErrorType
	Path string
	Err  error
}

func (e *MoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// CollisionPolicy decides what happens when the target name is already taken.
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionFail      CollisionPolicy = "fail"
	CollisionRename    CollisionPolicy = "rename"
)

// ParseCollisionPolicy converts a settings value into a CollisionPolicy.
func ParseCollisionPolicy(value string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionFail:
		return CollisionFail, nil
	case CollisionRename:
		return CollisionRename, nil
	}
	return "", fmt.Errorf("unknown collision policy %q (want overwrite, fail or rename)", value)
}

// Executor moves files and folders, appending a record after each successful move.
type Executor struct {
	history   *history.MoveHistory
	collision CollisionPolicy
	logger    *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithCollisionPolicy sets the collision policy. The default is CollisionOverwrite.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(e *Executor) { e.collision = p }
}

// WithLogger sets the logger used for move diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an Executor that appends to h.
func NewExecutor(h *history.MoveHistory, opts ...Option) *Executor {
	e := &Executor{
		history:   h,
		collision: CollisionOverwrite,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DestinationDir returns baseFolder/subfolder, or baseFolder when subfolder is empty.
func DestinationDir(baseFolder, subfolder string) string {
	if subfolder == "" {
		return filepath.Clean(baseFolder)
	}
	return filepath.Join(baseFolder, subfolder)
}

// Move relocates the file at source into DestinationDir(baseFolder, subfolder),
// keeping its name unless the collision policy renames it. It returns the final path.
func (e *Executor) Move(source, baseFolder, subfolder string) (string, error) {
	if _, err := os.Lstat(source); err != nil {
		if os.IsNotExist(err) {
			return "", &MoveError{Type: SourceNotFound, Path: source, Err: err}
		}
		return "", classify(source, err)
	}

	destDir := DestinationDir(baseFolder, subfolder)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		if os.IsPermission(err) {
			return "", &MoveError{Type: PermissionDenied, Path: destDir, Err: err}
		}
		return "", &MoveError{Type: CreateDirFailed, Path: destDir, Err: err}
	}

	name := filepath.Base(source)
	target := filepath.Join(destDir, name)
	if target == filepath.Clean(source) {
		return target, nil
	}

	if info, err := os.Lstat(target); err == nil {
		if info.IsDir() {
			return "", &MoveError{Type: DestinationIsDirectory, Path: target}
		}
		switch e.collision {
		case CollisionFail:
			return "", &MoveError{Type: DestinationExists, Path: target}
		case CollisionRename:
			target = filepath.Join(destDir, DuplicateName(destDir, name))
			e.logger.Info("destination exists, renaming", "source", source, "destination", target)
		default:
			e.logger.Info("destination exists, overwriting", "path", target)
		}
	}

	if err := fsx.MoveFile(source, target); err != nil {
		return "", classify(source, err)
	}

	e.history.Append(history.MoveRecord{Source: source, Destination: target, Kind: history.KindFile})
	e.logger.Debug("moved file", "source", source, "destination", target)
	return target, nil
}

// MoveFolder relocates the directory at source into destDir as a single unit.
// An existing entry with the same name is never replaced: the folder is renamed,
// or the move fails under CollisionFail.
func (e *Executor) MoveFolder(source, destDir string) (string, error) {
	info, err := os.Lstat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &MoveError{Type: SourceNotFound, Path: source, Err: err}
		}
		return "", classify(source, err)
	}
	if !info.IsDir() {
		return "", &MoveError{Type: MoveFailed, Path: source, Err: fmt.Errorf("not a directory")}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		if os.IsPermission(err) {
			return "", &MoveError{Type: PermissionDenied, Path: destDir, Err: err}
		}
		return "", &MoveError{Type: CreateDirFailed, Path: destDir, Err: err}
	}

	name := filepath.Base(source)
	if fsx.Exists(filepath.Join(destDir, name)) {
		if e.collision == CollisionFail {
			return "", &MoveError{Type: DestinationExists, Path: filepath.Join(destDir, name)}
		}
		name = DuplicateName(destDir, name)
	}
	target := filepath.Join(destDir, name)

	if err := fsx.Rename(source, target); err != nil {
		return "", classify(source, err)
	}

	e.history.Append(history.MoveRecord{Source: source, Destination: target, Kind: history.KindFolder})
	e.logger.Debug("moved folder", "source", source, "destination", target)
	return target, nil
}

func classify(path string, err error) error {
	switch {
	case fsx.IsCrossDevice(err):
		return &MoveError{Type: CrossDevice, Path: path, Err: err}
	case os.IsPermission(err):
		return &MoveError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &MoveError{Type: MoveFailed, Path: path, Err: err}
	}
}
