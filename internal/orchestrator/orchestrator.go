// Package orchestrator runs complete sort passes over a directory.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sortly/internal/classifier"
	"sortly/internal/config"
	"sortly/internal/history"
	"sortly/internal/matcher"
	"sortly/internal/mover"
	"sortly/internal/policy"
	"sortly/internal/scanner"
)

// State is a phase of a sort pass.
type State string

const (
	StateIdle          State = "idle"
	StatePolicyApplied State = "policy-applied"
	StateScanning      State = "scanning"
	StatePerFileSort   State = "per-file-sort"
	StateFinalizing    State = "finalizing"
	StateDone          State = "done"
)

// Event is reported to an Observer on every state change and after every
// processed file. File is empty for state changes.
type Event struct {
	State       State
	File        string
	Destination string
	Err         error
}

// Observer receives pass progress.
type Observer func(Event)

// Result is the outcome of a sort pass.
type Result struct {
	PassID   string
	Root     string
	Summary  Summary
	Errors   []*SortError // Recoverable per-file errors, in occurrence order
	Warnings []error      // Unreadable subdirectories, tag read notices
	History  []history.MoveRecord
	Skipped  int // Files already at their destination
	Duration time.Duration
}

// Moved returns the number of files moved during the pass.
func (r *Result) Moved() int {
	n := 0
	for _, rec := range r.History {
		if rec.Kind == history.KindFile {
			n++
		}
	}
	return n
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// SortEngine executes sort passes and persists their history.
type SortEngine struct {
	store         *history.Store
	classifier    *classifier.Classifier
	collision     mover.CollisionPolicy
	symlinkPolicy string
	protected     []string
	logger        *slog.Logger
	observer      Observer
}

// Option configures a SortEngine.
type Option func(*SortEngine)

// WithClassifier sets the subfolder classifier.
func WithClassifier(c *classifier.Classifier) Option {
	return func(e *SortEngine) { e.classifier = c }
}

// WithCollisionPolicy sets how occupied destinations are handled.
func WithCollisionPolicy(p mover.CollisionPolicy) Option {
	return func(e *SortEngine) { e.collision = p }
}

// WithSymlinkPolicy sets how symlinked files are treated while scanning.
func WithSymlinkPolicy(p string) Option {
	return func(e *SortEngine) { e.symlinkPolicy = p }
}

// WithProtectedPaths lists paths whose top-level folder is never archived.
// The history file is always protected.
func WithProtectedPaths(paths ...string) Option {
	return func(e *SortEngine) { e.protected = append(e.protected, paths...) }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *SortEngine) { e.logger = logger }
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option {
	return func(e *SortEngine) { e.observer = o }
}

// NewSortEngine creates a SortEngine persisting history to store.
func NewSortEngine(store *history.Store, opts ...Option) *SortEngine {
	e := &SortEngine{
		store:         store,
		collision:     mover.CollisionOverwrite,
		symlinkPolicy: scanner.SymlinkPolicySkip,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		e.classifier = classifier.New(classifier.WithLogger(e.logger))
	}
	return e
}

func (e *SortEngine) emit(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

func (e *SortEngine) protectedPaths() []string {
	return append([]string{e.store.Path(), e.store.LockPath()}, e.protected...)
}

// validateRoot returns the absolute root or an InvalidRoot error.
func validateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &SortError{Kind: InvalidRoot, Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &SortError{Kind: InvalidRoot, Path: abs, Err: err}
	}
	if !info.IsDir() {
		return "", &SortError{Kind: InvalidRoot, Path: abs, Err: errors.New("not a directory")}
	}
	return abs, nil
}

// Sort runs one pass over root. Fatal problems are returned as *SortError;
// per-file failures are collected in Result.Errors. When ctx is cancelled the
// pass stops between files, the moves done so far are persisted, and the
// partial result is returned with ctx.Err().
func (e *SortEngine) Sort(ctx context.Context, root string, rules config.RuleSet, behavior policy.Behavior) (*Result, error) {
	start := time.Now()
	passID := uuid.NewString()
	logger := e.logger.With("pass_id", passID)

	e.emit(Event{State: StateIdle})

	root, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	unlock, err := e.store.Lock()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("failed to release history lock", "error", err)
		}
	}()

	h := history.New()
	exec := mover.NewExecutor(h, mover.WithCollisionPolicy(e.collision), mover.WithLogger(logger))
	result := &Result{PassID: passID, Root: root, Summary: Summary{}}

	finish := func() {
		result.History = h.Records()
		result.Duration = time.Since(start)
	}
	// abort persists whatever moved so far so it stays undoable.
	abort := func(cause error) (*Result, error) {
		finish()
		if h.Len() > 0 {
			if err := e.store.Save(h); err != nil {
				logger.Error("failed to persist partial history", "error", err)
				return result, errors.Join(cause, err)
			}
		}
		return result, cause
	}

	logger.Info("sort started", "root", root, "behavior", behavior, "rules", len(rules))

	outcome, err := policy.Apply(root, rules, behavior, exec, policy.Options{
		Protected: e.protectedPaths(),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("folder policy failed", "error", err)
		return abort(&SortError{Kind: PolicyFailure, Path: root, Err: err})
	}
	for _, a := range outcome.Archived {
		result.Summary.Add(a.RelPath, a.Files)
	}
	e.emit(Event{State: StatePolicyApplied})

	e.emit(Event{State: StateScanning})
	scan, err := scanner.ScanWithOptions(root, scanner.ScanOptions{
		MaxDepth:      outcome.ScanDepth,
		SymlinkPolicy: e.symlinkPolicy,
		Exclude:       []string{e.store.Path(), e.store.LockPath()},
	})
	if err != nil {
		logger.Error("scan failed", "error", err)
		return abort(&SortError{Kind: ScanFailure, Path: root, Err: err})
	}
	for _, w := range scan.Warnings {
		logger.Warn("skipping unreadable directory", "error", w)
		result.Warnings = append(result.Warnings, w)
	}

	e.emit(Event{State: StatePerFileSort})
	for _, file := range scan.Files {
		if err := ctx.Err(); err != nil {
			logger.Warn("sort cancelled", "moved", h.Len())
			return abort(err)
		}
		e.sortFile(root, file, rules, exec, result, logger)
	}

	e.emit(Event{State: StateFinalizing})
	finish()
	if err := e.store.Save(h); err != nil {
		return result, fmt.Errorf("persist history: %w", err)
	}

	e.emit(Event{State: StateDone})
	logger.Info("sort finished",
		"moved", result.Moved(),
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
		"duration", result.Duration)
	return result, nil
}

// resolution is where one scanned file belongs.
type resolution struct {
	base      string // absolute base folder
	subfolder string
	dest      string // full destination path
	notice    error  // non-fatal classification problem
}

// inPlace reports whether the file already sits at its destination.
func (r *resolution) inPlace(file scanner.FileEntry) bool {
	return r.dest == file.FullPath
}

// resolve matches file against rules and classifies it. It returns nil, nil
// for files no rule covers.
func (e *SortEngine) resolve(root string, file scanner.FileEntry, rules config.RuleSet) (*resolution, *SortError) {
	match := matcher.Match(file.Name, rules)
	if !match.Matched {
		return nil, nil
	}

	class, err := e.classifier.Classify(match.Rule.Subfolder, file.FullPath, file.Info)
	if err != nil {
		kind := PerFileMoveFailure
		if errors.Is(err, classifier.ErrMetadataUnavailable) {
			kind = MetadataUnavailable
		}
		return nil, &SortError{Kind: kind, Path: file.FullPath, Err: err}
	}

	base := baseDir(root, match.Rule.BaseFolder)
	return &resolution{
		base:      base,
		subfolder: class.Subfolder,
		dest:      filepath.Join(mover.DestinationDir(base, class.Subfolder), file.Name),
		notice:    class.Notice,
	}, nil
}

func (e *SortEngine) sortFile(root string, file scanner.FileEntry, rules config.RuleSet, exec *mover.Executor, result *Result, logger *slog.Logger) {
	fail := func(sortErr *SortError) {
		result.Errors = append(result.Errors, sortErr)
		logger.Error("file not sorted", "file", file.RelPath, "kind", sortErr.Kind, "error", sortErr.Err)
		e.emit(Event{State: StatePerFileSort, File: file.FullPath, Err: sortErr})
	}

	res, sortErr := e.resolve(root, file, rules)
	if sortErr != nil {
		fail(sortErr)
		return
	}
	if res == nil {
		logger.Debug("no rule", "file", file.RelPath)
		return
	}
	if res.notice != nil {
		result.Warnings = append(result.Warnings, res.notice)
	}
	if res.inPlace(file) {
		result.Skipped++
		logger.Debug("already in place", "file", file.RelPath)
		return
	}

	dest, err := exec.Move(file.FullPath, res.base, res.subfolder)
	if err != nil {
		fail(&SortError{Kind: PerFileMoveFailure, Path: file.FullPath, Err: err})
		return
	}

	result.Summary.Add(summaryKey(root, filepath.Dir(dest)), 1)
	logger.Info("moved", "file", file.RelPath, "to", summaryKey(root, dest))
	e.emit(Event{State: StatePerFileSort, File: file.FullPath, Destination: dest})
}

// baseDir resolves a rule's base folder against the sort root.
func baseDir(root, folder string) string {
	if filepath.IsAbs(folder) {
		return filepath.Clean(folder)
	}
	return filepath.Join(root, folder)
}
