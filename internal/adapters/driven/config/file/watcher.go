package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/gitsleuth-cli/internal/logger"
)

// DefaultReloadDelay coalesces the burst of events editors produce on save.
const DefaultReloadDelay = 500 * time.Millisecond

// Watcher calls a function after the config file changes on disk.
type Watcher struct {
	path     string
	delay    time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
}

// NewWatcher watches path. onChange runs on the watcher goroutine, once per
// burst of changes, after delay has passed without further events.
func NewWatcher(path string, delay time.Duration, onChange func()) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultReloadDelay
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	// Watch the directory; editors often replace the file instead of writing it.
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching config directory %q: %w", dir, err)
	}

	return &Watcher{
		path:     path,
		delay:    delay,
		onChange: onChange,
		watcher:  fw,
	}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	reload := time.NewTimer(0)
	if !reload.Stop() {
		<-reload.C
	}
	defer reload.Stop()

	var lastMod time.Time
	if info, err := os.Stat(w.path); err == nil {
		lastMod = info.ModTime()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debug("Config change detected: %s %s", event.Op, event.Name)
				reload.Reset(w.delay)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)

		case <-reload.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			// Some editors touch the file without changing it.
			if !info.ModTime().After(lastMod) && !lastMod.IsZero() {
				continue
			}
			lastMod = info.ModTime()
			w.onChange()
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
