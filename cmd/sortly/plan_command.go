package main

import (
	"github.com/spf13/cobra"

	"sortly/internal/output"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "plan <directory>",
		Short: "Show what sort would move, without touching any file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			setup, err := ctx.prepareSort(cmd, out, flags, nil)
			if err != nil {
				return err
			}

			plan, err := setup.engine.Plan(cmd.Context(), args[0], setup.rules, setup.behavior)
			if err != nil {
				return err
			}

			for _, w := range plan.Warnings {
				out.Warn("%v", w)
			}
			if len(plan.Moves) == 0 {
				out.Info("Nothing to move")
			} else {
				out.Print(output.PlanTable(plan))
			}
			if len(plan.Errors) > 0 {
				out.Print(output.ErrorsTable(plan.Root, plan.Errors))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
