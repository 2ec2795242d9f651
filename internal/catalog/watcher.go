package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the seed file must stay unchanged before a
// re-import starts.
const DefaultSettleDelay = 500 * time.Millisecond

// ImportFunc applies a seed file. The watcher calls it once per settled change.
type ImportFunc func(ctx context.Context, path string) (*Report, error)

// Watcher re-imports the seed file whenever it changes on disk.
type Watcher struct {
	path        string
	apply       ImportFunc
	logger      *slog.Logger
	settleDelay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	size    int64
	modTime time.Time

	triggers chan struct{}
}

// NewWatcher creates a watcher for the seed file at path.
func NewWatcher(path string, apply ImportFunc, logger *slog.Logger, settleDelay time.Duration) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &Watcher{
		path:        filepath.Clean(path),
		apply:       apply,
		logger:      logger,
		settleDelay: settleDelay,
		triggers:    make(chan struct{}, 1),
	}
}

// Run watches until ctx is cancelled. Editors often replace files rather
// than write them in place, so the parent directory is watched instead of
// the file itself.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching catalog seed file", "path", w.path)

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.startSettling()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		case <-w.triggers:
			w.reimport(ctx)
		}
	}
}

func (w *Watcher) startSettling() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn("failed to stat seed file", "path", w.path, "error", err)
		return
	}
	w.size = info.Size()
	w.modTime = info.ModTime()
	w.timer = time.AfterFunc(w.settleDelay, w.checkSettled)
}

// checkSettled fires the import once size and mtime stop moving.
func (w *Watcher) checkSettled() {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.path)
	if err != nil {
		w.timer = nil
		return
	}
	if info.Size() != w.size || !info.ModTime().Equal(w.modTime) {
		w.size = info.Size()
		w.modTime = info.ModTime()
		w.timer = time.AfterFunc(w.settleDelay, w.checkSettled)
		return
	}
	w.timer = nil

	select {
	case w.triggers <- struct{}{}:
	default:
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) reimport(ctx context.Context) {
	report, err := w.apply(ctx, w.path)
	if err != nil {
		w.logger.Error("catalog re-import failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("catalog re-imported",
		"path", w.path,
		"run_id", report.RunID,
		"created", report.Created,
		"updated", report.Updated,
	)
}

// ImportFile opens path and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}
