package main

import (
	"github.com/spf13/cobra"
)

func newConfigsCommand(ctx *commandContext) *cobra.Command {
	configsCmd := &cobra.Command{
		Use:   "configs",
		Short: "Manage named rule sets",
	}

	configsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the named rule sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			store, err := ctx.ruleStore()
			if err != nil {
				return err
			}
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				marker := "  "
				if name == settings.ActiveConfig {
					marker = "* "
				}
				out.Info("%s%s", marker, name)
			}
			return nil
		},
	})

	configsCmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a rule set seeded with the default rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			store, err := ctx.ruleStore()
			if err != nil {
				return err
			}
			if _, err := store.Create(args[0]); err != nil {
				return err
			}
			out.Success("Created rule set %s at %s", args[0], store.Path(args[0]))
			return nil
		},
	})

	configsCmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a named rule set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			store, err := ctx.ruleStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			out.Success("Deleted rule set %s", args[0])
			return nil
		},
	})

	return configsCmd
}
