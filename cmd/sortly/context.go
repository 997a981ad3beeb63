package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sortly/internal/classifier"
	"sortly/internal/config"
	"sortly/internal/history"
	"sortly/internal/logging"
	"sortly/internal/mover"
	"sortly/internal/orchestrator"
	"sortly/internal/output"
	"sortly/internal/policy"
	"sortly/internal/scanner"
)

type globalFlags struct {
	settings  string
	config    string
	verbose   bool
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	settingsOnce  sync.Once
	settings      *config.Settings
	settingsFound bool
	settingsErr   error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		settings, found, err := config.LoadSettings(strings.TrimSpace(c.flags.settings))
		if err != nil {
			c.settingsErr = fmt.Errorf("load settings: %w", err)
			return
		}
		if c.flags.logFormat != "" {
			settings.Logging.Format = c.flags.logFormat
		}
		c.settings = settings
		c.settingsFound = found
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) output(cmd *cobra.Command) *output.Output {
	w := cmd.OutOrStdout()
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return output.New(output.Config{
		Verbose:   c.flags.verbose,
		Writer:    w,
		ErrWriter: cmd.ErrOrStderr(),
		IsTTY:     isTTY,
	})
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   settings.Logging.Level,
		Format:  settings.Logging.Format,
		Verbose: c.flags.verbose,
	})
}

func (c *commandContext) ruleStore() (*config.Store, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	return config.NewStore(settings.ConfigDir), nil
}

// ruleSource resolves --config: a value that looks like a file path names a
// rule file, anything else names a rule set in the config directory.
type ruleSource struct {
	name string
	path string
}

func (r ruleSource) String() string {
	if r.path != "" {
		return r.path
	}
	return r.name
}

func (c *commandContext) ruleSource() (ruleSource, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return ruleSource{}, err
	}
	value := strings.TrimSpace(c.flags.config)
	if value == "" {
		return ruleSource{name: settings.ActiveConfig}, nil
	}
	if strings.ContainsAny(value, `/\`) || filepath.Ext(value) != "" {
		return ruleSource{path: value}, nil
	}
	return ruleSource{name: value}, nil
}

func (c *commandContext) loadRules() (config.RuleSet, ruleSource, error) {
	src, err := c.ruleSource()
	if err != nil {
		return nil, src, err
	}
	if src.path != "" {
		rs, err := config.LoadRuleSet(src.path)
		return rs, src, err
	}
	store, err := c.ruleStore()
	if err != nil {
		return nil, src, err
	}
	rs, err := store.Load(src.name)
	return rs, src, err
}

func (c *commandContext) saveRules(src ruleSource, rs config.RuleSet) error {
	if src.path != "" {
		return config.SaveRuleSet(rs, src.path)
	}
	store, err := c.ruleStore()
	if err != nil {
		return err
	}
	return store.Save(src.name, rs)
}

func (c *commandContext) historyStore() (*history.Store, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	return history.NewStore(settings.HistoryPath), nil
}

// sortFlags overrides settings for a single sort, plan or watch run.
type sortFlags struct {
	behavior   string
	collision  string
	yearSource string
	symlinks   string
}

func (f *sortFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.behavior, "behavior", "b", "", "Pre-existing folders: leave, sort-contents or archive")
	cmd.Flags().StringVar(&f.collision, "collision", "", "Name collisions: overwrite, fail or rename")
	cmd.Flags().StringVar(&f.yearSource, "year-source", "", "Year subfolders from filesystem or exif dates")
	cmd.Flags().StringVar(&f.symlinks, "symlinks", "", "Symlinked files: skip, follow or error")
}

func pick(flag, setting string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	return setting
}

// sortSetup bundles everything a sort-like command needs.
type sortSetup struct {
	engine   *orchestrator.SortEngine
	store    *history.Store
	rules    config.RuleSet
	source   ruleSource
	behavior policy.Behavior
	logger   *slog.Logger
}

func (c *commandContext) prepareSort(cmd *cobra.Command, out *output.Output, flags sortFlags, observer orchestrator.Observer) (*sortSetup, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, err
	}

	rules, src, err := c.loadRules()
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", src, err)
	}
	validation := config.ValidateRuleSet(rules)
	for _, w := range validation.Warnings {
		out.Warn("%s: %s", w.Field, w.Message)
	}
	if !validation.Valid {
		for _, e := range validation.Errors {
			out.Error("%s: %s", e.Field, e.Message)
		}
		return nil, fmt.Errorf("rule set %s is invalid", src)
	}

	behavior, err := policy.ParseBehavior(pick(flags.behavior, settings.Behavior))
	if err != nil {
		return nil, err
	}
	collision, err := mover.ParseCollisionPolicy(pick(flags.collision, settings.Collision))
	if err != nil {
		return nil, err
	}
	yearSource, err := classifier.ParseYearSource(pick(flags.yearSource, settings.YearSource))
	if err != nil {
		return nil, err
	}
	symlinks, err := scanner.ParseSymlinkPolicy(pick(flags.symlinks, settings.Symlinks))
	if err != nil {
		return nil, err
	}

	store, err := c.historyStore()
	if err != nil {
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithClassifier(classifier.New(
			classifier.WithYearSource(yearSource),
			classifier.WithLogger(logger),
		)),
		orchestrator.WithCollisionPolicy(collision),
		orchestrator.WithSymlinkPolicy(symlinks),
		orchestrator.WithLogger(logger),
	}
	if observer != nil {
		opts = append(opts, orchestrator.WithObserver(observer))
	}

	return &sortSetup{
		engine:   orchestrator.NewSortEngine(store, opts...),
		store:    store,
		rules:    rules,
		source:   src,
		behavior: behavior,
		logger:   logger,
	}, nil
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
