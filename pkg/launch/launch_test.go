package launch

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/kraitsura/techtree/pkg/model"
)

var pr = model.Node{ID: "pr-1", Title: "Fix it's bug", Branch: "fix/bug", Group: "auth"}

func TestExpandQuotesFields(t *testing.T) {
	l, err := New("git checkout {{.Branch}} && echo {{.Title}}", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Expand(pr)
	if err != nil {
		t.Fatal(err)
	}
	want := `git checkout 'fix/bug' && echo 'Fix it'\''s bug'`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNewRejectsBadTemplate(t *testing.T) {
	if _, err := New("echo {{.ID", "", 0); err == nil {
		t.Error("expected parse error")
	}
}

func TestExpandUnknownField(t *testing.T) {
	l, err := New("echo {{.Nope}}", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Expand(pr); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestActivateWithoutCommand(t *testing.T) {
	l, err := New("  ", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if l.Configured() {
		t.Error("blank command should not be configured")
	}
	if _, err := l.Activate(context.Background(), pr); !errors.Is(err, ErrNoCommand) {
		t.Errorf("expected ErrNoCommand, got %v", err)
	}
}

func TestActivateUsesRunner(t *testing.T) {
	l, _ := New("open {{.ID}}", "/work", time.Second)
	var gotDir, gotCmd string
	l.WithRunner(func(ctx context.Context, dir, command string) ([]byte, error) {
		gotDir, gotCmd = dir, command
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the context")
		}
		return []byte("  done\n"), nil
	})

	res, err := l.Activate(context.Background(), pr)
	if err != nil {
		t.Fatal(err)
	}
	if gotDir != "/work" || gotCmd != "open 'pr-1'" {
		t.Errorf("unexpected run %q in %q", gotCmd, gotDir)
	}
	if res.Output != "done" || res.ExitCode != 0 || res.NodeID != "pr-1" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestActivateRealShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	l, _ := New("echo {{.ID}}; exit 3", t.TempDir(), 5*time.Second)
	res, err := l.Activate(context.Background(), pr)
	if err == nil {
		t.Fatal("expected exit error")
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
	if res.Output != "pr-1" {
		t.Errorf("expected output pr-1, got %q", res.Output)
	}
}

func TestActivateTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	l, _ := New("sleep 5", t.TempDir(), 50*time.Millisecond)
	res, err := l.Activate(context.Background(), pr)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout, got %v", err)
	}
	if res.ExitCode != -1 {
		t.Errorf("expected exit code -1, got %d", res.ExitCode)
	}
}
