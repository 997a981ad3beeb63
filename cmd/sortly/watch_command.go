package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sortly/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		flags   sortFlags
		initial bool
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Sort new files as they appear until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			setup, err := ctx.prepareSort(cmd, out, flags, nil)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			if initial {
				result, err := setup.engine.Sort(cmd.Context(), root, setup.rules, setup.behavior)
				if err != nil {
					return err
				}
				if err := reportSort(out, result); err != nil {
					out.Warn("%v", err)
				}
			}

			cfg := watcher.DefaultWatchConfig()
			cfg.Debounce = time.Duration(settings.Watch.DebounceSeconds) * time.Second
			cfg.StableThreshold = time.Duration(settings.Watch.StableThresholdMs) * time.Millisecond
			if len(settings.Watch.IgnorePatterns) > 0 {
				cfg.IgnorePatterns = settings.Watch.IgnorePatterns
			}
			cfg.Exclude = []string{setup.store.Path(), setup.store.LockPath()}

			pass := func(passCtx context.Context, files []string) (int, int, error) {
				out.Verbose("sorting after %d new files", len(files))
				result, err := setup.engine.Sort(passCtx, root, setup.rules, setup.behavior)
				if err != nil {
					out.Error("%v", err)
					return 0, 0, err
				}
				for _, e := range result.Errors {
					out.Warn("%v", e)
				}
				if moved := result.Moved(); moved > 0 {
					out.Info("Moved %d items", moved)
				}
				return result.Moved(), len(result.Errors), nil
			}

			w := watcher.New(cfg, pass, watcher.WithLogger(setup.logger))
			if err := w.Start(cmd.Context(), root); err != nil {
				return err
			}
			out.Info("Watching %s (Ctrl+C to stop)", root)

			<-cmd.Context().Done()
			summary := w.Stop()
			out.Success("Stopped after %d passes: %d moved, %d failed, %d ignored in %s",
				summary.Passes, summary.FilesMoved, summary.FilesFailed, summary.FilesIgnored,
				formatDuration(summary.Duration))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&initial, "initial", false, "Sort existing files once before watching")
	return cmd
}
