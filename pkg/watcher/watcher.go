package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kraitsura/techtree/pkg/loader"
	"github.com/kraitsura/techtree/pkg/logging"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher calls OnChange after plan files in a directory settle
type Watcher struct {
	dir      string
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	onChange func()
	logger   *log.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// New watches dir. onChange runs on the debouncer's goroutine, so it must not
// touch UI state directly; send a message to the program instead.
func New(dir string, window time.Duration, onChange func(), logger *log.Logger) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watcher: nil change callback")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		fsw:      fsw,
		debounce: NewDebouncer(window),
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Dir returns the watched directory
func (w *Watcher) Dir() string { return w.dir }

// Run processes events until ctx is cancelled or Close is called
func (w *Watcher) Run(ctx context.Context) {
	defer w.debounce.Cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("plan file changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			w.debounce.Trigger(w.onChange)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.debounce.Cancel()
		err = w.fsw.Close()
	})
	return err
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return loader.IsPlanFile(base)
}
