// Package launch runs the user's activate command for a PR. The command is a
// Go template expanded with the PR's fields and run through sh -c.
package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"text/template"
	"time"

	"github.com/kraitsura/techtree/pkg/model"
)

// ErrNoCommand is returned when no activate command is configured
var ErrNoCommand = errors.New("no activate command configured")

// Maximum bytes of combined output kept from a run
const maxOutput = 4096

// Fields are the values available to the command template
type Fields struct {
	ID     string
	Title  string
	Branch string
	Group  string
	URL    string
}

// FieldsFor extracts template fields from a PR
func FieldsFor(n model.Node) Fields {
	return Fields{ID: n.ID, Title: n.Title, Branch: n.Branch, Group: n.Group, URL: n.URL}
}

// Result describes one finished run
type Result struct {
	NodeID   string
	Command  string
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner executes a command line. Tests swap it out.
type Runner func(ctx context.Context, dir, command string) ([]byte, error)

// Launcher expands and runs the activate template
type Launcher struct {
	tmpl    *template.Template
	raw     string
	dir     string
	timeout time.Duration
	run     Runner
}

// New parses the command template. An empty command yields a launcher whose
// Activate returns ErrNoCommand.
func New(command, dir string, timeout time.Duration) (*Launcher, error) {
	l := &Launcher{raw: strings.TrimSpace(command), dir: dir, timeout: timeout, run: shellRunner}
	if l.raw == "" {
		return l, nil
	}
	tmpl, err := template.New("activate").Option("missingkey=error").Parse(l.raw)
	if err != nil {
		return nil, fmt.Errorf("parse activate command: %w", err)
	}
	l.tmpl = tmpl
	return l, nil
}

// WithRunner replaces the process runner
func (l *Launcher) WithRunner(r Runner) *Launcher {
	l.run = r
	return l
}

// Configured reports whether a command is set
func (l *Launcher) Configured() bool { return l != nil && l.tmpl != nil }

// Expand renders the command line for a PR. Field values are shell-quoted.
func (l *Launcher) Expand(n model.Node) (string, error) {
	if !l.Configured() {
		return "", ErrNoCommand
	}
	f := FieldsFor(n)
	quoted := Fields{
		ID:     shellQuote(f.ID),
		Title:  shellQuote(f.Title),
		Branch: shellQuote(f.Branch),
		Group:  shellQuote(f.Group),
		URL:    shellQuote(f.URL),
	}
	var buf bytes.Buffer
	if err := l.tmpl.Execute(&buf, quoted); err != nil {
		return "", fmt.Errorf("expand activate command: %w", err)
	}
	return buf.String(), nil
}

// Activate runs the command for a PR and waits for it, bounded by the
// configured timeout. A non-zero exit is reported in the result and as an error.
func (l *Launcher) Activate(ctx context.Context, n model.Node) (Result, error) {
	cmdline, err := l.Expand(n)
	if err != nil {
		return Result{NodeID: n.ID}, err
	}
	res := Result{NodeID: n.ID, Command: cmdline}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := l.run(ctx, l.dir, cmdline)
	res.Duration = time.Since(start)
	res.Output = truncate(strings.TrimSpace(string(out)), maxOutput)

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			res.ExitCode = -1
			return res, fmt.Errorf("activate %s: timed out after %s", n.ID, l.timeout)
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
			return res, fmt.Errorf("activate %s: exit status %d", n.ID, res.ExitCode)
		default:
			res.ExitCode = -1
			return res, fmt.Errorf("activate %s: %w", n.ID, err)
		}
	}
	return res, nil
}

func shellRunner(ctx context.Context, dir, command string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}

// shellQuote wraps s in single quotes for sh
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
