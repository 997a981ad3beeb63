package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"sortly/internal/config"
	"sortly/internal/discovery"
	"sortly/internal/normalizer"
	"sortly/internal/output"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit the active rule set",
	}

	rulesCmd.AddCommand(newRulesListCommand(ctx))
	rulesCmd.AddCommand(newRulesAddCommand(ctx))
	rulesCmd.AddCommand(newRulesRemoveCommand(ctx))
	rulesCmd.AddCommand(newRulesResetCommand(ctx))
	rulesCmd.AddCommand(newRulesValidateCommand(ctx))
	rulesCmd.AddCommand(newRulesDiscoverCommand(ctx))

	return rulesCmd
}

func newRulesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the rules of the active rule set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			rules, src, err := ctx.loadRules()
			if err != nil {
				return err
			}
			out.Header("Rule set %s", src)
			out.Print(output.RulesTable(rules))
			return nil
		},
	}
}

func newRulesAddCommand(ctx *commandContext) *cobra.Command {
	var (
		subfolder string
		replace   bool
	)

	cmd := &cobra.Command{
		Use:   "add [extension folder]",
		Short: "Add a rule; prompts for the fields when none are given",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			rules, src, err := ctx.loadRules()
			if err != nil {
				return err
			}

			var rule config.Rule
			switch len(args) {
			case 2:
				strategy, err := config.ParseStrategy(subfolder)
				if err != nil {
					return err
				}
				rule = config.Rule{Extension: args[0], BaseFolder: args[1], Subfolder: strategy}
			case 0:
				if !discovery.IsInteractive() {
					return errors.New("rules add needs <extension> <folder> when stdin is not a terminal")
				}
				rule, err = promptRule()
				if err != nil {
					return err
				}
			default:
				return errors.New("rules add needs both <extension> and <folder>")
			}

			candidate := config.RuleSet{}
			candidate.Set(rule)
			if v := config.ValidateRuleSet(candidate); !v.Valid {
				return fmt.Errorf("invalid rule: %s", v.Errors[0].Message)
			}

			ext := normalizer.NormalizeExtension(rule.Extension)
			if replace {
				rules.Set(rule)
			} else if !rules.Add(rule) {
				return fmt.Errorf("a rule for %s already exists (use --replace)", ext)
			}
			if err := ctx.saveRules(src, rules); err != nil {
				return err
			}
			out.Success("Added %s -> %s to %s", ext, rules[ext].BaseFolder, src)
			return nil
		},
	}

	cmd.Flags().StringVar(&subfolder, "subfolder", "none", "Subfolder strategy: none, year or music-type")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace an existing rule for the extension")
	return cmd
}

func promptRule() (config.Rule, error) {
	var (
		ext      string
		folder   string
		strategy = string(config.StrategyNone)
	)
	notEmpty := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Extension").
				Description("File extension the rule applies to").
				Placeholder(".pdf").
				Validate(notEmpty).
				Value(&ext),
			huh.NewInput().
				Title("Folder").
				Description("Folder, relative to the sorted directory, that receives the files").
				Placeholder("PDFs").
				Validate(notEmpty).
				Value(&folder),
			huh.NewSelect[string]().
				Title("Subfolder").
				Options(
					huh.NewOption("None", string(config.StrategyNone)),
					huh.NewOption("Year the file was created", string(config.StrategyYear)),
					huh.NewOption("Music or Other by audio tags", string(config.StrategyMusicType)),
				).
				Value(&strategy),
		),
	)
	if err := form.Run(); err != nil {
		return config.Rule{}, err
	}
	return config.Rule{Extension: ext, BaseFolder: strings.TrimSpace(folder), Subfolder: config.Strategy(strategy)}, nil
}

func newRulesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <extension>...",
		Short: "Remove rules by extension",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			rules, src, err := ctx.loadRules()
			if err != nil {
				return err
			}
			var missing []string
			for _, ext := range args {
				if !rules.Remove(ext) {
					missing = append(missing, normalizer.NormalizeExtension(ext))
				}
			}
			if err := ctx.saveRules(src, rules); err != nil {
				return err
			}
			if len(missing) > 0 {
				out.Warn("no rule for %s", strings.Join(missing, ", "))
			}
			out.Success("Removed %d rules from %s", len(args)-len(missing), src)
			return nil
		},
	}
}

func newRulesResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the active rule set with the default rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			src, err := ctx.ruleSource()
			if err != nil {
				return err
			}
			if err := ctx.saveRules(src, config.DefaultRules()); err != nil {
				return err
			}
			out.Success("Reset %s to the default rules", src)
			return nil
		},
	}
}

func newRulesValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the active rule set for mistakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			rules, src, err := ctx.loadRules()
			if err != nil {
				return err
			}
			result := config.ValidateRuleSet(rules)
			for _, w := range result.Warnings {
				out.Warn("%s: %s", w.Field, w.Message)
			}
			for _, e := range result.Errors {
				out.Error("%s: %s", e.Field, e.Message)
			}
			if !result.Valid {
				return fmt.Errorf("rule set %s has %d errors", src, len(result.Errors))
			}
			out.Success("Rule set %s is valid", src)
			return nil
		},
	}
}

func newRulesDiscoverCommand(ctx *commandContext) *cobra.Command {
	var (
		yes    bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "discover <directory>",
		Short: "Learn rules from a directory that is already organised",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ctx.output(cmd)
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			rules, src, err := ctx.loadRules()
			if err != nil {
				return err
			}

			result, err := discovery.Discover(args[0], rules, discovery.Options{Logger: logger})
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				out.Warn("%v", w)
			}
			out.Info("Scanned %d folders, %d files", result.ScannedDirs, result.FilesAnalyzed)
			for _, r := range result.SkippedRules {
				out.Verbose("skipped %s: already in %s", r.Rule.Extension, src)
			}
			if len(result.NewRules) == 0 {
				out.Info("No new rules found")
				return nil
			}

			found := config.RuleSet{}
			for _, r := range result.NewRules {
				found.Set(r.Rule)
			}
			out.Print(output.RulesTable(found))
			if dryRun {
				return nil
			}

			accepted := result.NewRules
			if !yes {
				prompter := discovery.NewInteractivePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				accepted, err = prompter.Review(result.NewRules)
				if err != nil {
					return err
				}
			}
			if len(accepted) == 0 {
				out.Info("No rules added")
				return nil
			}

			added := discovery.Apply(rules, accepted)
			if err := ctx.saveRules(src, rules); err != nil {
				return err
			}
			out.Success("Added %d rules to %s", added, src)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept every discovered rule without prompting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only show the discovered rules")
	return cmd
}
