package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/blackwell-systems/caskkit/internal/cask"
)

// DefaultDebounce is the quiet period required before a change is evaluated.
const DefaultDebounce = 200 * time.Millisecond

// Result is one evaluation of the watched descriptor.
type Result struct {
	Path       string
	Descriptor *cask.Descriptor
	Issues     cask.Issues
	// Err is set when the file could not be read or decoded.
	Err error
	At  time.Time
}

// OK reports whether the descriptor loaded and has no error findings.
func (r Result) OK() bool {
	return r.Err == nil && r.Issues.Err() == nil
}

// Watcher re-validates a descriptor file on every change.
type Watcher struct {
	path     string
	onChange func(Result)
	debounce time.Duration

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a new Watcher for the descriptor at path.
func New(path string, onChange func(Result), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := cask.FormatFromPath(abs); err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start evaluates the descriptor once and then watches for changes in a
// background goroutine.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw

	w.onChange(Evaluate(w.path))

	w.wg.Add(1)
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	log := zap.L().Sugar()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !matchesTarget(ev.Name, w.path) || ev.Op == fsnotify.Chmod {
				continue
			}
			log.Debugw("descriptor changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warnw("file watcher error", "error", err)
		case <-timer.C:
			w.onChange(Evaluate(w.path))
		case <-w.stopCh:
			return
		}
	}
}

// Stop halts the watcher and waits for the loop to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()
	if w.fsw != nil {
		if err := w.fsw.Close(); err != nil {
			return fmt.Errorf("failed to close file watcher: %w", err)
		}
	}
	return nil
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// Evaluate decodes and audits the descriptor at path.
func Evaluate(path string) Result {
	r := Result{Path: path, At: time.Now()}
	d, err := cask.DecodeFile(path)
	if err != nil {
		r.Err = err
		return r
	}
	r.Descriptor = d
	r.Issues = cask.Validate(d)
	return r
}
