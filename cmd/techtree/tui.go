package main

import (
	"context"
	"errors"
	"os"

	"github.com/kraitsura/techtree/pkg/launch"
	"github.com/kraitsura/techtree/pkg/loader"
	"github.com/kraitsura/techtree/pkg/logging"
	"github.com/kraitsura/techtree/pkg/store"
	"github.com/kraitsura/techtree/pkg/ui"
	"github.com/kraitsura/techtree/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runTUI starts the dashboard. Without a terminal on stdout it prints the
// tree instead.
func (c *cli) runTUI(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := c.cfg

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		set, err := loadPlans(ctx, cfg)
		if err != nil {
			return err
		}
		v := viewFlags{grouped: cfg.View.GroupMode, hideFinished: cfg.View.HideFinished}
		return writeLayoutText(cmd.OutOrStdout(), buildScene(cfg, set, v))
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if c.verbose {
		level = log.DebugLevel
	}
	logger, closer, err := logging.OpenFile(cfg.LogsDir(), level)
	if err != nil {
		return err
	}
	defer closer.Close()

	prog := logging.NewProgress(logger)
	set, err := loadPlans(ctx, cfg)
	if err != nil {
		return err
	}
	prog.Done("Loaded plans")
	if set.Skipped > 0 {
		logger.Warn("skipped malformed plan lines", "count", set.Skipped)
	}

	st, err := store.Open(cfg.StateDBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	state := store.ViewState{GroupMode: cfg.View.GroupMode, HideFinished: cfg.View.HideFinished}
	if saved, err := st.HasState(ctx); err != nil {
		logger.Warn("read view state", "err", err)
	} else if saved {
		if state, err = st.Load(ctx); err != nil {
			return err
		}
	}

	launcher, err := launch.New(cfg.Activate.Command, cfg.ProjectDir, cfg.Activate.Timeout.Std())
	if err != nil {
		return err
	}

	reload := func(ctx context.Context) (*loader.PlanSet, error) {
		return loadPlans(ctx, cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := ui.NewModel(ui.Options{
		Context:   ctx,
		Nodes:     set.Nodes,
		Groups:    set.Groups,
		State:     state,
		Geometry:  geometry(cfg),
		Theme:     ui.DefaultTheme(nil),
		Store:     st,
		Activator: launcher,
		Reload:    reload,
		Logger:    logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	w, err := watcher.New(cfg.PlansPath(), cfg.Watch.Debounce.Std(), func() {
		set, err := reload(ctx)
		p.Send(ui.PlansReloadedMsg{Set: set, Err: err})
	}, logger)
	if err != nil {
		logger.Warn("live reload disabled", "err", err)
	} else {
		defer w.Close()
		go w.Run(ctx)
	}

	_, err = p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("dashboard exited", "err", err)
		return err
	}
	return nil
}
