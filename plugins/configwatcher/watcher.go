// Package configwatcher monitors the pipeline configuration file and
// invokes a callback when it changes. The CLI uses it to restart the
// pipeline with the new configuration.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/procbus/pkg/log"
)

// Config holds configuration options for the config watcher.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before
	// invoking the callback. Editors often produce several events per
	// save. Default: 100 milliseconds
	DebounceDelay time.Duration

	// Logger receives watcher diagnostics. Default: no-op.
	Logger log.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Watcher monitors a single configuration file for changes.
// It watches the containing directory, not the file itself, so atomic
// save strategies (write to temp file, rename over) are observed.
type Watcher struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration
	logger        log.Logger
	onChange      func()

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a watcher for the given file. onChange runs after each
// debounced change.
func New(path string, onChange func(), cfg Config) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}

	return &Watcher{
		path:          path,
		debounceDelay: cfg.DebounceDelay,
		logger:        cfg.Logger,
		onChange:      onChange,
	}
}

// Start begins watching. Returns an error if the containing directory
// cannot be watched.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("procbus: create watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("procbus: watch %s: %w", dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.logger.Info("config watcher started", log.String("path", w.path))

	w.wg.Add(1)
	go w.watchLoop(watchCtx, fsw)

	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()

	filename := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("config file changed", log.String("op", event.Op.String()))
			w.debounceChange()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) debounceChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, w.onChange)
}
