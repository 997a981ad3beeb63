package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sortly/internal/orchestrator"
	"sortly/internal/output"
)

func newSortCommand(ctx *commandContext) *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "sort <directory>",
		Short: "Sort the files of a directory using the active rule set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)

			processed := 0
			observer := func(ev orchestrator.Event) {
				switch {
				case ev.File == "" && ev.State == orchestrator.StatePerFileSort:
					out.StartProgress(0)
				case ev.File != "":
					processed++
					out.UpdateProgress(processed, "Sorting")
					if ev.Err != nil {
						out.Verbose("failed %s: %v", ev.File, ev.Err)
					} else {
						out.Verbose("%s -> %s", ev.File, ev.Destination)
					}
				case ev.State == orchestrator.StateFinalizing:
					out.EndProgress()
				}
			}

			setup, err := ctx.prepareSort(cmd, out, flags, observer)
			if err != nil {
				return err
			}
			out.Verbose("Using rules %s (%d rules), behavior %s", setup.source, len(setup.rules), setup.behavior)

			result, err := setup.engine.Sort(cmd.Context(), args[0], setup.rules, setup.behavior)
			out.EndProgress()
			if err != nil {
				return err
			}
			return reportSort(out, result)
		},
	}

	flags.register(cmd)
	return cmd
}

func reportSort(out *output.Output, result *orchestrator.Result) error {
	for _, w := range result.Warnings {
		out.Warn("%v", w)
	}
	if len(result.Summary) > 0 {
		out.Print(output.SummaryTable(result.Summary))
	}
	if result.Skipped > 0 {
		out.Info("%d files were already in place", result.Skipped)
	}
	out.Success("Moved %d items in %s", result.Moved(), formatDuration(result.Duration))

	if result.HasErrors() {
		out.Print(output.ErrorsTable(result.Root, result.Errors))
		return fmt.Errorf("%d files could not be sorted", len(result.Errors))
	}
	return nil
}
