package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sortly/internal/fsx"
)

// UndoReason classifies why a record could not be restored.
type UndoReason string

const (
	ReasonSourceOccupied UndoReason = "SOURCE_OCCUPIED"
	ReasonMkdirFailed    UndoReason = "MKDIR_FAILED"
	ReasonMoveFailed     UndoReason = "MOVE_FAILED"
)

// UndoError describes one record that could not be restored.
type UndoError struct {
	Record MoveRecord
	Reason UndoReason
	Err    error
}

func (e *UndoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s -> %s (%v)", e.Reason, e.Record.Destination, e.Record.Source, e.Err)
	}
	return fmt.Sprintf("%s: %s -> %s", e.Reason, e.Record.Destination, e.Record.Source)
}

func (e *UndoError) Unwrap() error {
	return e.Err
}

// UndoResult contains the result of an undo operation.
type UndoResult struct {
	Total      int         // Records in the history
	Restored   int         // Records moved back
	Skipped    int         // Records whose destination no longer exists
	Failed     int         // Records that could not be restored
	Failures   []UndoError // Details of failures, in processing order
	PrunedDirs []string    // Empty directories removed after restoring
	// HistoryRetained is true when the history was kept for a retry.
	HistoryRetained bool
}

// UndoEngine reverses the moves of the latest pass.
type UndoEngine struct {
	store  *Store
	logger *slog.Logger
}

// UndoOption configures an UndoEngine.
type UndoOption func(*UndoEngine)

// WithUndoLogger sets the logger used during undo.
func WithUndoLogger(logger *slog.Logger) UndoOption {
	return func(e *UndoEngine) { e.logger = logger }
}

// NewUndoEngine creates an UndoEngine over store.
func NewUndoEngine(store *Store, opts ...UndoOption) *UndoEngine {
	e := &UndoEngine{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Undo replays the persisted history in reverse order, prunes directories left
// empty, and deletes the history when nothing failed. Without a history it
// returns ErrNoHistory and touches nothing.
func (e *UndoEngine) Undo(ctx context.Context) (*UndoResult, error) {
	if !e.store.Exists() {
		return nil, ErrNoHistory
	}

	unlock, err := e.store.Lock()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			e.logger.Warn("failed to release history lock", "error", err)
		}
	}()

	h, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	records := h.Records()

	result := &UndoResult{Total: len(records)}
	e.logger.Info("undo started", "records", len(records), "history", e.store.Path())

	for i := len(records) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			result.HistoryRetained = true
			return result, err
		}
		e.restore(records[i], result)
	}

	result.PrunedDirs = e.prune(records)

	if result.Failed > 0 {
		result.HistoryRetained = true
		e.logger.Warn("undo incomplete, history kept for retry", "failed", result.Failed)
		return result, nil
	}

	if err := e.store.Delete(); err != nil {
		result.HistoryRetained = true
		return result, fmt.Errorf("delete history: %w", err)
	}

	e.logger.Info("undo complete",
		"restored", result.Restored,
		"skipped", result.Skipped,
		"pruned", len(result.PrunedDirs))
	return result, nil
}

func (e *UndoEngine) restore(rec MoveRecord, result *UndoResult) {
	fail := func(reason UndoReason, err error) {
		result.Failed++
		result.Failures = append(result.Failures, UndoError{Record: rec, Reason: reason, Err: err})
		e.logger.Error("restore failed", "reason", reason, "from", rec.Destination, "to", rec.Source, "error", err)
	}

	if !fsx.Exists(rec.Destination) {
		result.Skipped++
		e.logger.Warn("moved item no longer exists, skipping", "path", rec.Destination)
		return
	}

	if fsx.Exists(rec.Source) {
		fail(ReasonSourceOccupied, os.ErrExist)
		return
	}

	if err := os.MkdirAll(filepath.Dir(rec.Source), 0o755); err != nil {
		fail(ReasonMkdirFailed, err)
		return
	}

	var err error
	if rec.Kind == KindFolder {
		err = fsx.Rename(rec.Destination, rec.Source)
	} else {
		err = fsx.MoveFile(rec.Destination, rec.Source)
	}
	if err != nil {
		fail(ReasonMoveFailed, err)
		return
	}

	result.Restored++
	e.logger.Debug("restored", "type", rec.Kind, "from", rec.Destination, "to", rec.Source)
}

// prune removes empty parents of every destination, deepest first, walking
// upward but never reaching the common ancestor of all recorded paths.
func (e *UndoEngine) prune(records []MoveRecord) []string {
	if len(records) == 0 {
		return nil
	}

	paths := make([]string, 0, 2*len(records))
	seen := make(map[string]bool)
	var parents []string
	for _, rec := range records {
		paths = append(paths, rec.Source, rec.Destination)
		parent := filepath.Dir(rec.Destination)
		if !seen[parent] {
			seen[parent] = true
			parents = append(parents, parent)
		}
	}
	boundary := CommonAncestor(paths)

	sort.SliceStable(parents, func(i, j int) bool {
		di, dj := depth(parents[i]), depth(parents[j])
		if di != dj {
			return di > dj
		}
		return parents[i] < parents[j]
	})

	var pruned []string
	for _, dir := range parents {
		for within(boundary, dir) {
			empty, err := fsx.IsEmptyDir(dir)
			if err != nil || !empty {
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					e.logger.Debug("cannot inspect directory", "path", dir, "error", err)
				}
				break
			}
			if err := os.Remove(dir); err != nil {
				e.logger.Warn("failed to remove empty directory", "path", dir, "error", err)
				break
			}
			pruned = append(pruned, dir)
			e.logger.Debug("removed empty directory", "path", dir)
			dir = filepath.Dir(dir)
		}
	}
	return pruned
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}

// within reports whether dir lies strictly below boundary.
func within(boundary, dir string) bool {
	rel, err := filepath.Rel(boundary, dir)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CommonAncestor returns the deepest directory containing every path.
func CommonAncestor(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	common := filepath.Dir(filepath.Clean(paths[0]))
	for _, p := range paths[1:] {
		dir := filepath.Dir(filepath.Clean(p))
		for !within(common, dir) && common != dir {
			parent := filepath.Dir(common)
			if parent == common {
				break
			}
			common = parent
		}
	}
	return common
}
