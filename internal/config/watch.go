package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads a tuning file on change and delivers parsed values.
// Events that fail to parse are logged and dropped; the engine keeps the
// last good tuning.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	Tunings chan Tuning
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches the tuning file's directory (editors replace files,
// so watching the file itself misses rename-based saves).
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		path:    path,
		Tunings: make(chan Tuning, 4),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		close(w.Tunings)
	})
	return err
}

func (w *Watcher) run() {
	var lastEvent time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			// Debounce editor double-writes.
			now := time.Now()
			if now.Sub(lastEvent) < 100*time.Millisecond {
				continue
			}
			lastEvent = now

			tuning, err := LoadTuning(w.path)
			if err != nil {
				slog.Warn("tuning reload failed, keeping previous values", "path", w.path, "error", err)
				continue
			}
			select {
			case w.Tunings <- tuning:
				slog.Info("tuning reloaded", "path", w.path)
			default:
				slog.Warn("tuning reload dropped, consumer not keeping up", "path", w.path)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("tuning watcher error", "error", err)
		case <-w.closeCh:
			return
		}
	}
}
