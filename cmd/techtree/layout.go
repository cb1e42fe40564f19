package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kraitsura/techtree/pkg/canvas"
	"github.com/kraitsura/techtree/pkg/layout"
	"github.com/kraitsura/techtree/pkg/logging"

	"github.com/spf13/cobra"
)

func (c *cli) newLayoutCmd() *cobra.Command {
	var (
		v      viewFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the tech tree as text or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.resolveViewFlags(cmd, &v)
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)

			prog := logging.NewProgress(logger)
			set, err := loadPlans(ctx, c.cfg)
			if err != nil {
				return err
			}
			logger.Debug("plans loaded", "prs", len(set.Nodes), "plans", len(set.Groups), "skipped", set.Skipped)

			scene := buildScene(c.cfg, set, v)
			if asJSON {
				err = writeLayoutJSON(cmd.OutOrStdout(), scene)
			} else {
				err = writeLayoutText(cmd.OutOrStdout(), scene)
			}
			if err == nil {
				prog.Done(fmt.Sprintf("Laid out %d entries", scene.Layout.Len()))
			}
			return err
		},
	}
	c.addViewFlags(cmd, &v)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print positions and edges as JSON")
	return cmd
}

func writeLayoutText(w io.Writer, scene *canvas.Scene) error {
	if scene.Layout.Len() == 0 {
		_, err := fmt.Fprintln(w, "No PRs to show")
		return err
	}
	for _, line := range scene.Paint(canvas.PaintOptions{}).Lines() {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

type layoutDoc struct {
	Columns int            `json:"columns"`
	Rows    int            `json:"rows"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Entries []entryDoc     `json:"entries"`
	Headers []headerDoc    `json:"headers,omitempty"`
	Edges   []edgeDoc      `json:"edges"`
	Hidden  map[string]int `json:"hidden,omitempty"`
}

type entryDoc struct {
	Kind string      `json:"kind"`
	ID   string      `json:"id"`
	Col  int         `json:"col"`
	Row  int         `json:"row"`
	Box  canvas.Rect `json:"box"`
}

type headerDoc struct {
	Plan string `json:"plan"`
	Name string `json:"name"`
	Row  int    `json:"row"`
}

type edgeDoc struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func writeLayoutJSON(w io.Writer, scene *canvas.Scene) error {
	l := scene.Layout
	width, height := scene.Size()
	doc := layoutDoc{
		Columns: l.Columns,
		Rows:    l.Rows,
		Width:   width,
		Height:  height,
		Entries: make([]entryDoc, 0, l.Len()),
		Edges:   make([]edgeDoc, 0, len(l.Edges)),
	}
	for _, e := range l.Entries {
		kind := "pr"
		if e.Kind == layout.EntryHiddenGroup {
			kind = "hidden_plan"
		}
		p := l.Positions[e]
		box, _ := scene.Rect(e)
		doc.Entries = append(doc.Entries, entryDoc{Kind: kind, ID: e.ID, Col: p.Col, Row: p.Row, Box: box})
	}
	for _, h := range l.Headers {
		doc.Headers = append(doc.Headers, headerDoc{Plan: h.GroupID, Name: scene.GroupName(h.GroupID), Row: h.Row})
	}
	for _, e := range l.Edges {
		doc.Edges = append(doc.Edges, edgeDoc{From: e.From, To: e.To})
	}
	if len(l.HiddenCounts) > 0 {
		doc.Hidden = l.HiddenCounts
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
