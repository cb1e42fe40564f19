package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plansYAML = `
plans:
  - id: auth
    name: Auth
    prs:
      - id: A
        title: Session store
        status: merged
      - id: B
        title: Login flow
        depends_on: [A]
  - id: billing
    name: Billing
    prs:
      - id: C
        title: Invoices
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runCLI(t, "-C", dir, "init", "--yes")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plans", "plans.yaml"), []byte(plansYAML), 0o644))
	return dir
}

func TestInitCreatesProject(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "-C", dir, "init", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")

	for _, p := range []string{".techtree/config.yaml", ".techtree/logs", ".techtree/state", "plans"} {
		_, err := os.Stat(filepath.Join(dir, p))
		assert.NoError(t, err, p)
	}
}

func TestLayoutText(t *testing.T) {
	dir := project(t)
	out, err := runCLI(t, "-C", dir, "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "▾ Auth")
	assert.Contains(t, out, "▾ Billing")
	assert.Contains(t, out, "Login flow")
	assert.Contains(t, out, "▶")
}

func TestLayoutTextEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "-C", dir, "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "No PRs to show")
}

func TestLayoutJSON(t *testing.T) {
	dir := project(t)
	out, err := runCLI(t, "-C", dir, "layout", "--json", "--collapse", "billing")
	require.NoError(t, err)

	var doc layoutDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	var kinds []string
	for _, e := range doc.Entries {
		kinds = append(kinds, e.Kind+":"+e.ID)
	}
	assert.Equal(t, []string{"pr:A", "pr:B", "hidden_plan:billing"}, kinds)
	assert.Equal(t, []edgeDoc{{From: "A", To: "B"}}, doc.Edges)
	assert.Equal(t, map[string]int{"billing": 1}, doc.Hidden)
}

func TestLayoutJSONUngrouped(t *testing.T) {
	dir := project(t)
	out, err := runCLI(t, "-C", dir, "layout", "--json", "--group=false", "--hide-finished")
	require.NoError(t, err)

	var doc layoutDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc.Headers)
	assert.Len(t, doc.Entries, 2, "merged A is hidden")
}

func TestExport(t *testing.T) {
	dir := project(t)
	svgPath := filepath.Join(dir, "out", "tree.svg")
	pngPath := filepath.Join(dir, "out", "tree.png")

	_, err := runCLI(t, "-C", dir, "export", "-o", svgPath, "-o", pngPath, "--title", "Plans")
	require.NoError(t, err)
	for _, p := range []string{svgPath, pngPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
}

func TestExportRequiresOutput(t *testing.T) {
	dir := project(t)
	_, err := runCLI(t, "-C", dir, "export")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	dir := project(t)
	cfgPath := filepath.Join(dir, ".techtree", "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: loud\n"), 0o644))

	_, err := runCLI(t, "-C", dir, "layout")
	assert.Error(t, err)
}
