package vocabulary

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the asset files must stay quiet before a reload.
const DefaultSettleDelay = 500 * time.Millisecond

// Watcher reloads a Holder when the vocabulary or descriptions file changes.
// Files are watched through their parent directories so editor rename-and-replace saves are seen.
type Watcher struct {
	holder           *Holder
	path             string
	descriptionsPath string
	settleDelay      time.Duration
	logger           *slog.Logger

	fsw   *fsnotify.Watcher
	mu    sync.Mutex
	timer *time.Timer

	// onReload is called after every reload attempt; tests hook it.
	onReload func(error)

	wg   sync.WaitGroup
	stop context.CancelFunc
}

// NewWatcher creates a watcher for the given asset paths.
func NewWatcher(holder *Holder, path, descriptionsPath string, settleDelay time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dirs := map[string]bool{filepath.Dir(path): true}
	if descriptionsPath != "" {
		dirs[filepath.Dir(descriptionsPath)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}

	return &Watcher{
		holder:           holder,
		path:             filepath.Clean(path),
		descriptionsPath: cleanOptional(descriptionsPath),
		settleDelay:      settleDelay,
		logger:           logger,
		fsw:              fsw,
	}, nil
}

// Start processes file events in the background until Close is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.stop = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.processEvents(ctx)
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	if w.stop != nil {
		w.stop()
	}
	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.scheduleReload()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("vocabulary watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.path || (w.descriptionsPath != "" && name == w.descriptionsPath)
}

// scheduleReload debounces bursts of events into a single reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settleDelay, w.reload)
}

func (w *Watcher) reload() {
	v, err := Load(w.path, w.descriptionsPath)
	if err != nil {
		// Keep serving the previous snapshot; a half-written file must not empty the vocabulary.
		w.logger.Warn("vocabulary reload failed, keeping previous", "path", w.path, "error", err)
	} else {
		w.holder.Set(v)
		w.logger.Info("vocabulary reloaded", "path", w.path, "terms", v.Size())
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

func cleanOptional(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}
