package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sortly/internal/history"
	"sortly/internal/output"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Move everything from the last sort back where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}

			result, err := history.NewUndoEngine(store, history.WithUndoLogger(logger)).Undo(cmd.Context())
			if errors.Is(err, history.ErrNoHistory) {
				out.Info("Nothing to undo")
				return nil
			}
			if err != nil {
				return err
			}

			for _, dir := range result.PrunedDirs {
				out.Verbose("removed empty folder %s", dir)
			}
			out.Print(output.UndoTable(result))
			for _, f := range result.Failures {
				out.Error("%v", &f)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d moves could not be undone; history kept at %s", result.Failed, store.Path())
			}
			out.Success("Restored %d items", result.Restored)
			return nil
		},
	}
}
