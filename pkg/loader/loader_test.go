package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kraitsura/techtree/pkg/loader"
	"github.com/kraitsura/techtree/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authPlan = `
plans:
  - id: auth
    name: Auth rewrite
    prs:
      - id: pr-1
        title: Session store
        status: merged
      - id: pr-2
        title: Login flow
        depends_on: [pr-1]
prs:
  - id: pr-9
    title: Fix typo
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseYAML(t *testing.T) {
	set, err := loader.ParseYAML(strings.NewReader(authPlan))
	require.NoError(t, err)

	require.Len(t, set.Nodes, 3)
	assert.Equal(t, []model.Group{{ID: "auth", Name: "Auth rewrite"}}, set.Groups)

	byID := make(map[string]model.Node)
	for _, n := range set.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, "auth", byID["pr-2"].Group)
	assert.Equal(t, []string{"pr-1"}, byID["pr-2"].DependsOn)
	assert.Equal(t, model.StatusPending, byID["pr-2"].Status, "missing status defaults to pending")
	assert.Equal(t, model.StatusMerged, byID["pr-1"].Status)
	assert.True(t, byID["pr-9"].IsStandalone())
}

func TestParseYAMLInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "plans: [\n"},
		{"bad status", "prs:\n  - id: a\n    title: A\n    status: shipped\n"},
		{"self dependency", "prs:\n  - id: a\n    title: A\n    depends_on: [a]\n"},
		{"plan without id", "plans:\n  - name: Nameless\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ParseYAML(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseYAMLEmpty(t *testing.T) {
	set, err := loader.ParseYAML(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, set.Nodes)
}

func TestParseJSONLSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"pr-1","title":"One","status":"in_progress","plan":"search"}`,
		`not json`,
		``,
		`{"id":"pr-2","title":"","status":"pending"}`,
		`{"id":"pr-3","title":"Three","depends_on":["pr-1"]}`,
	}, "\n")

	set, err := loader.ParseJSONL(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, set.Nodes, 2)
	assert.Equal(t, 2, set.Skipped)
	assert.Equal(t, "search", set.Nodes[0].Group)
	assert.Equal(t, model.StatusPending, set.Nodes[1].Status)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "auth.yaml", authPlan)
	writeFile(t, dir, "search.jsonl",
		`{"id":"pr-5","title":"Index","plan":"search","depends_on":["pr-2"]}`+"\n")
	writeFile(t, dir, "notes.md", "ignored")
	writeFile(t, dir, ".hidden.yaml", "prs: [")

	set, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	var ids []string
	for _, n := range set.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"pr-1", "pr-2", "pr-9", "pr-5"}, ids)
	assert.Equal(t, []model.Group{{ID: "auth", Name: "Auth rewrite"}, {ID: "search"}}, set.Groups)
	assert.Equal(t, "Auth rewrite", set.GroupMap()["auth"].Name)
}

func TestLoadDirDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "prs:\n  - id: pr-1\n    title: A\n")
	writeFile(t, dir, "b.jsonl", `{"id":"pr-1","title":"B"}`+"\n")

	_, err := loader.LoadDir(context.Background(), dir)
	require.ErrorIs(t, err, loader.ErrDuplicateID)
	assert.Contains(t, err.Error(), "pr-1")
}

func TestLoadDirNoPlans(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "nothing here")

	_, err := loader.LoadDir(context.Background(), dir)
	assert.ErrorIs(t, err, loader.ErrNoPlans)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := loader.LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDirBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", authPlan)
	path := writeFile(t, dir, "bad.yaml", "prs: [\n")

	_, err := loader.LoadDir(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestIsPlanFile(t *testing.T) {
	assert.True(t, loader.IsPlanFile("a.yaml"))
	assert.True(t, loader.IsPlanFile("a.YML"))
	assert.True(t, loader.IsPlanFile("a.jsonl"))
	assert.False(t, loader.IsPlanFile("a.json"))
}
