package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DatabaseWatcher = (*Watcher)(nil)

// Watcher implements ports.DatabaseWatcher over fsnotify. The state version
// combines the modification times of the local database directory and of the
// sync database directory next to it, so it is stable across runs and changes
// with every transaction and every database refresh.
type Watcher struct {
	dir     string
	syncDir string
	window  time.Duration
	logger  ports.Logger

	mu      sync.Mutex
	version string
	seq     uint64

	changes chan string
}

// NewWatcher creates a watcher for the database directory dir.
func NewWatcher(dir string, window time.Duration, logger ports.Logger) *Watcher {
	w := &Watcher{
		dir:     dir,
		syncDir: filepath.Join(filepath.Dir(dir), "sync"),
		window:  window,
		logger:  logger,
		changes: make(chan string, 1),
	}
	w.version = w.stamp()
	return w
}

// Version returns the current state version.
func (w *Watcher) Version() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// Changes delivers the latest version after each debounced burst of events.
// Only the newest undelivered version is kept.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run watches the database directory, its parent (for the lock file) and the
// sync database directory until ctx is done. A missing sync directory is skipped.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, domain.ErrWatcherFailed.Error())
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range []string{w.dir, filepath.Dir(w.dir)} {
		if err := fsw.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherFailed.Error()), "path", dir)
		}
	}
	if _, err := os.Stat(w.syncDir); err == nil {
		if err := fsw.Add(w.syncDir); err != nil {
			w.logger.Warn("package database watcher: " + err.Error())
		}
	}

	debouncer := NewDebouncer(w.window, func([]string) { w.bump() })
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				debouncer.Add(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("package database watcher: " + err.Error())
		}
	}
}

func (w *Watcher) bump() {
	w.mu.Lock()
	w.seq++
	next := w.stamp()
	if next == w.version {
		next += "." + strconv.FormatUint(w.seq, 10)
	}
	w.version = next
	w.mu.Unlock()

	// Replace an undelivered version with the newer one.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- next:
	default:
	}
}

func (w *Watcher) stamp() string {
	info, err := os.Stat(w.dir)
	if err != nil {
		return "missing"
	}
	local := strconv.FormatInt(info.ModTime().UnixNano(), 36)
	if synced, err := os.Stat(w.syncDir); err == nil {
		return local + "-" + strconv.FormatInt(synced.ModTime().UnixNano(), 36)
	}
	return local
}
