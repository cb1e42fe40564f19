package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kraitsura/techtree/pkg/config"
	"github.com/kraitsura/techtree/pkg/launch"
	"github.com/kraitsura/techtree/pkg/logging"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) newInitCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the .techtree directory and config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())
			if err := config.InitDir(c.dir); err != nil {
				return err
			}
			cfg, err := config.Load(c.dir)
			if err != nil {
				return err
			}

			if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
				if err := runInitForm(cfg); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), "Kept the default config")
						return nil
					}
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}
			}

			if err := os.MkdirAll(cfg.PlansPath(), 0o755); err != nil {
				return fmt.Errorf("create plans dir: %w", err)
			}
			logger.Info("initialized", "config", cfg.Path(), "plans", cfg.PlansPath())
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.Path())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept defaults without prompting")
	return cmd
}

// runInitForm asks for the values most projects change
func runInitForm(cfg *config.Config) error {
	timeout := cfg.Activate.Timeout.Std().String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Plans directory").
				Description("Plan files (*.yaml, *.jsonl), relative to the project").
				Value(&cfg.PlansDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Group PRs by plan?").
				Value(&cfg.View.GroupMode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Activate command").
				Description("Run on enter. Fields: {{.ID}} {{.Title}} {{.Branch}} {{.Group}} {{.URL}}").
				Placeholder("git switch {{.Branch}}").
				Value(&cfg.Activate.Command).
				Validate(func(s string) error {
					_, err := launch.New(s, "", 0)
					return err
				}),
			huh.NewInput().
				Title("Activate timeout").
				Value(&timeout).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	d, err := time.ParseDuration(timeout)
	if err != nil {
		return err
	}
	cfg.Activate.Timeout = config.Duration(d)
	return nil
}
