package main

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"sortly/internal/config"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Settings file utilities",
	}

	settingsCmd.AddCommand(newSettingsInitCommand(ctx))
	settingsCmd.AddCommand(newSettingsShowCommand(ctx))

	return settingsCmd
}

func newSettingsInitCommand(ctx *commandContext) *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a settings file with the default values",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSettingsAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = strings.TrimSpace(ctx.flags.settings)
			}
			if target == "" {
				target = config.DefaultSettingsFile
			}
			if err := config.CreateSample(target, overwrite); err != nil {
				return fmt.Errorf("create settings file: %w (use --overwrite to replace it)", err)
			}
			ctx.output(cmd).Success("Wrote default settings to %s", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the settings file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing settings file")
	return cmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			if !ctx.settingsFound {
				out.Verbose("no settings file found; showing defaults")
			}
			data, err := toml.Marshal(settings)
			if err != nil {
				return err
			}
			out.Print(strings.TrimRight(string(data), "\n"))
			return nil
		},
	}
}
