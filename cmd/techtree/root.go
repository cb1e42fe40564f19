package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kraitsura/techtree/pkg/canvas"
	"github.com/kraitsura/techtree/pkg/config"
	"github.com/kraitsura/techtree/pkg/layout"
	"github.com/kraitsura/techtree/pkg/loader"
	"github.com/kraitsura/techtree/pkg/logging"
	"github.com/kraitsura/techtree/pkg/model"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// cli holds the flags shared by every command
type cli struct {
	dir     string
	verbose bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "techtree",
		Short:        "Tech-tree dashboard for PR plans",
		Long:         `techtree lays out PRs and their dependencies as a tech tree, grouped by plan, and lets you navigate it from the keyboard.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.dir)
			if err != nil {
				return err
			}
			c.cfg = cfg
			level := logging.ParseLevel(cfg.LogLevel)
			if c.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.New(os.Stderr, level)))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("techtree %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVarP(&c.dir, "dir", "C", ".", "project directory")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.newLayoutCmd())
	root.AddCommand(c.newExportCmd())
	root.AddCommand(c.newInitCmd())
	return root
}

// loadPlans reads the plans directory. A missing or empty directory is an
// empty tree, not an error.
func loadPlans(ctx context.Context, cfg *config.Config) (*loader.PlanSet, error) {
	set, err := loader.LoadDir(ctx, cfg.PlansPath())
	if errors.Is(err, loader.ErrNoPlans) || errors.Is(err, fs.ErrNotExist) {
		return &loader.PlanSet{}, nil
	}
	return set, err
}

// geometry builds box sizes from the layout section of the config
func geometry(cfg *config.Config) canvas.Geometry {
	geo := canvas.DefaultGeometry()
	geo.NodeWidth = cfg.Layout.NodeWidth
	geo.ColumnGap = cfg.Layout.ColumnGap
	geo.RowGap = cfg.Layout.RowGap
	return geo.Normalize()
}

// viewFlags selects what a non-interactive rendering shows
type viewFlags struct {
	grouped      bool
	hideFinished bool
	hidden       []string
	width        int
}

func (c *cli) addViewFlags(cmd *cobra.Command, v *viewFlags) {
	cmd.Flags().BoolVar(&v.grouped, "group", false, "group PRs by plan (default from view.group_mode)")
	cmd.Flags().BoolVar(&v.hideFinished, "hide-finished", false, "hide merged and closed PRs (default from view.hide_finished)")
	cmd.Flags().StringSliceVar(&v.hidden, "collapse", nil, "plan ids to collapse (group mode only)")
	cmd.Flags().IntVar(&v.width, "width", 0, "minimum width in cells")
}

// resolveViewFlags fills flags the user did not set from the config
func (c *cli) resolveViewFlags(cmd *cobra.Command, v *viewFlags) {
	if !cmd.Flags().Changed("group") {
		v.grouped = c.cfg.View.GroupMode
	}
	if !cmd.Flags().Changed("hide-finished") {
		v.hideFinished = c.cfg.View.HideFinished
	}
}

// buildScene lays out a plan set the same way the dashboard does
func buildScene(cfg *config.Config, set *loader.PlanSet, v viewFlags) *canvas.Scene {
	hidden := make(map[string]bool, len(v.hidden))
	for _, id := range v.hidden {
		hidden[id] = true
	}
	in := layout.Input{Nodes: set.Nodes, HiddenGroups: hidden, GroupMode: v.grouped}
	if v.hideFinished {
		in.Keep = func(n model.Node) bool { return !n.Status.IsFinished() }
	}
	l := layout.Compute(in)

	groups := set.GroupMap()
	scene := canvas.NewScene(l, geometry(cfg), v.width)
	scene.GroupName = func(id string) string {
		if id == "" {
			return model.StandaloneName
		}
		if g, ok := groups[id]; ok {
			return g.DisplayName()
		}
		return id
	}
	return scene
}
