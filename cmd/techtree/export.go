package main

import (
	"errors"
	"fmt"

	"github.com/kraitsura/techtree/pkg/export"
	"github.com/kraitsura/techtree/pkg/logging"

	"github.com/spf13/cobra"
)

func (c *cli) newExportCmd() *cobra.Command {
	var (
		v       viewFlags
		outputs []string
		format  string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the tech tree to SVG or PNG",
		Example: `  techtree export -o tree.svg
  techtree export -o tree.svg -o tree.png --title "Q3 plans"
  techtree export --format png -o snapshot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(outputs) == 0 {
				return errors.New("at least one --output is required")
			}
			c.resolveViewFlags(cmd, &v)
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)

			set, err := loadPlans(ctx, c.cfg)
			if err != nil {
				return err
			}
			scene := buildScene(c.cfg, set, v)

			opts := make([]export.SnapshotOptions, len(outputs))
			for i, out := range outputs {
				opts[i] = export.SnapshotOptions{Path: out, Format: format, Title: title}
			}
			prog := logging.NewProgress(logger)
			if err := export.SaveAll(ctx, scene, opts); err != nil {
				return err
			}
			for _, o := range opts {
				fmt.Fprintln(cmd.OutOrStdout(), o.Path)
			}
			prog.Done(fmt.Sprintf("Exported %d file(s)", len(opts)))
			return nil
		},
	}
	c.addViewFlags(cmd, &v)
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "output file (repeatable)")
	cmd.Flags().StringVar(&format, "format", "", "svg or png (default from file extension)")
	cmd.Flags().StringVar(&title, "title", "", "title drawn above the tree")
	return cmd
}
