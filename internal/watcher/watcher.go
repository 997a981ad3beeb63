// Package watcher runs sort passes automatically when files arrive in a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Debounce        time.Duration // Quiet period after the last new file before a pass
	StableThreshold time.Duration // Time a file's size must stay unchanged
	IgnorePatterns  []string      // Glob patterns of files that never trigger a pass
	Exclude         []string      // Absolute paths never treated as new files
}

// DefaultWatchConfig returns a WatchConfig with the default timings.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Debounce:        2 * time.Second,
		StableThreshold: time.Second,
		IgnorePatterns:  DefaultIgnorePatterns(),
	}
}

// PassFunc runs one sort pass. files lists the new, stable files that triggered it.
// It returns how many files were moved and how many failed.
type PassFunc func(ctx context.Context, files []string) (moved, failed int, err error)

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Passes       int
	FilesSeen    int
	FilesIgnored int
	FilesMoved   int
	FilesFailed  int
	Duration     time.Duration
}

// Watcher watches one directory and runs a pass after new files settle.
type Watcher struct {
	config    WatchConfig
	pass      PassFunc
	logger    *slog.Logger
	filter    *FileFilter
	stability *StabilityChecker
	exclude   map[string]bool

	fsWatcher *fsnotify.Watcher
	debounce  *Debouncer
	pending   map[string]bool
	root      string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startTime time.Time

	passMu sync.Mutex // serialises passes

	mu      sync.Mutex
	summary WatchSummary
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// New creates a Watcher that calls pass for every settled batch of new files.
func New(config WatchConfig, pass PassFunc, opts ...Option) *Watcher {
	w := &Watcher{
		config:    config,
		pass:      pass,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		filter:    NewFileFilter(config.IgnorePatterns),
		stability: NewStabilityChecker(config.StableThreshold),
		exclude:   make(map[string]bool),
		pending:   make(map[string]bool),
	}
	for _, p := range config.Exclude {
		if abs, err := filepath.Abs(p); err == nil {
			w.exclude[abs] = true
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching root (not recursively). It returns once the watch is
// established; events are processed until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}

	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Add(abs); err != nil {
		w.fsWatcher.Close()
		return err
	}

	w.root = abs
	w.debounce = NewDebouncer(w.config.Debounce)
	w.startTime = time.Now()

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("watching", "root", abs, "debounce", w.config.Debounce)
	return nil
}

// Stop shuts the watcher down, waits for a running pass to finish and returns
// the session summary.
func (w *Watcher) Stop() *WatchSummary {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.summary
	s.Duration = time.Since(w.startTime)
	return &s
}

// Summary returns the statistics collected so far.
func (w *Watcher) Summary() WatchSummary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	defer w.debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				w.handleCreate(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		case <-w.debounce.C():
			w.debounce.Fired()
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleCreate(path string) {
	if w.exclude[path] || filepath.Dir(path) != w.root {
		return
	}
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.filter.ShouldIgnore(path) {
		w.summary.FilesIgnored++
		w.logger.Debug("ignoring temporary file", "path", path)
		return
	}
	if !w.pending[path] {
		w.pending[path] = true
		w.summary.FilesSeen++
	}
	w.debounce.Trigger()
}

// flush waits for the pending files to settle and runs one pass.
func (w *Watcher) flush(ctx context.Context) {
	files := make([]string, 0, len(w.pending))
	for p := range w.pending {
		files = append(files, p)
	}
	sort.Strings(files)
	clear(w.pending)

	var stable []string
	for _, f := range files {
		if err := w.stability.WaitForStable(ctx, f); err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, ErrFileNotFound) {
				w.logger.Warn("file not settled, skipping", "path", f, "error", err)
			}
			continue
		}
		stable = append(stable, f)
	}
	if len(stable) == 0 {
		return
	}

	w.passMu.Lock()
	defer w.passMu.Unlock()

	w.logger.Info("running sort pass", "new_files", len(stable))
	moved, failed, err := w.pass(ctx, stable)

	w.mu.Lock()
	w.summary.Passes++
	w.summary.FilesMoved += moved
	w.summary.FilesFailed += failed
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("sort pass failed", "error", err)
	}
}
