// Package loader reads plans and PRs from the plans directory. Two formats are
// understood: YAML plan files and JSONL files with one PR per line.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraitsura/techtree/pkg/model"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateID is returned when two PRs share an id
	ErrDuplicateID = errors.New("duplicate PR id")
	// ErrNoPlans is returned when the plans directory has no plan files
	ErrNoPlans = errors.New("no plan files found")
)

// Upper bound on concurrently parsed files
const maxParallel = 8

// PlanSet is everything loaded from one or more plan files
type PlanSet struct {
	Nodes  []model.Node
	Groups []model.Group
	// Skipped counts malformed JSONL lines that were ignored
	Skipped int
}

// GroupMap indexes the plans by id
func (s *PlanSet) GroupMap() map[string]model.Group {
	m := make(map[string]model.Group, len(s.Groups))
	for _, g := range s.Groups {
		m[g.ID] = g
	}
	return m
}

type planFile struct {
	Plans []planDoc    `yaml:"plans"`
	PRs   []model.Node `yaml:"prs"`
}

type planDoc struct {
	ID   string       `yaml:"id"`
	Name string       `yaml:"name"`
	PRs  []model.Node `yaml:"prs"`
}

// IsPlanFile reports whether the loader understands the file's extension
func IsPlanFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".jsonl":
		return true
	}
	return false
}

// LoadDir loads every plan file in dir. Files are parsed concurrently and
// merged in name order so the result does not depend on scheduling.
func LoadDir(ctx context.Context, dir string) (*PlanSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read plans dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsPlanFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPlans, dir)
	}
	sort.Strings(paths)

	results := make([]*PlanSet, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := LoadFile(p)
			if err != nil {
				return err
			}
			results[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return merge(paths, results)
}

// LoadFile loads a single plan file, picking the format from its extension
func LoadFile(path string) (*PlanSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file: %w", err)
	}
	defer f.Close()

	var set *PlanSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		set, err = ParseJSONL(f)
	case ".yaml", ".yml":
		set, err = ParseYAML(f)
	default:
		return nil, fmt.Errorf("unsupported plan file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ParseYAML reads a plan document. PRs nested under a plan belong to it;
// top-level PRs keep their own plan field and are standalone without one.
func ParseYAML(r io.Reader) (*PlanSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc planFile
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	set := &PlanSet{}
	for _, p := range doc.Plans {
		if p.ID == "" {
			return nil, fmt.Errorf("plan %q has no id", p.Name)
		}
		set.Groups = append(set.Groups, model.Group{ID: p.ID, Name: p.Name})
		for _, n := range p.PRs {
			n.Group = p.ID
			set.Nodes = append(set.Nodes, n)
		}
	}
	set.Nodes = append(set.Nodes, doc.PRs...)

	for i := range set.Nodes {
		n := &set.Nodes[i]
		if n.Status == "" {
			n.Status = model.StatusPending
		}
		if err := n.Validate(); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// ParseJSONL reads one PR per line. Malformed or invalid lines are skipped
// and counted.
func ParseJSONL(r io.Reader) (*PlanSet, error) {
	set := &PlanSet{}
	scanner := bufio.NewScanner(r)
	// PR descriptions can be long
	const maxCapacity = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var n model.Node
		if err := json.Unmarshal(line, &n); err != nil {
			set.Skipped++
			continue
		}
		if n.Status == "" {
			n.Status = model.StatusPending
		}
		if err := n.Validate(); err != nil {
			set.Skipped++
			continue
		}
		set.Nodes = append(set.Nodes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading plan file: %w", err)
	}
	return set, nil
}

// merge combines per-file results, rejecting duplicate PR ids. A plan
// declared in several files keeps the first non-empty name.
func merge(paths []string, sets []*PlanSet) (*PlanSet, error) {
	out := &PlanSet{}
	source := make(map[string]string)
	groupIdx := make(map[string]int)

	for i, set := range sets {
		out.Skipped += set.Skipped
		for _, g := range set.Groups {
			if j, ok := groupIdx[g.ID]; ok {
				if out.Groups[j].Name == "" {
					out.Groups[j].Name = g.Name
				}
				continue
			}
			groupIdx[g.ID] = len(out.Groups)
			out.Groups = append(out.Groups, g)
		}
		for _, n := range set.Nodes {
			if prev, ok := source[n.ID]; ok {
				return nil, fmt.Errorf("%w %s in %s and %s", ErrDuplicateID, n.ID, prev, paths[i])
			}
			source[n.ID] = paths[i]
			out.Nodes = append(out.Nodes, n)
		}
	}

	// Plans referenced only from a PR's plan field still get an entry
	for _, n := range out.Nodes {
		if n.Group == "" {
			continue
		}
		if _, ok := groupIdx[n.Group]; !ok {
			groupIdx[n.Group] = len(out.Groups)
			out.Groups = append(out.Groups, model.Group{ID: n.Group})
		}
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].ID < out.Groups[j].ID })
	return out, nil
}
