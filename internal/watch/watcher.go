// Package watch reports changes to record files on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/logging"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// DefaultDebounce collapses the burst of writes editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Change is a record file that was created or rewritten.
type Change struct {
	Path      string
	Timestamp time.Time
}

// Watcher emits a Change for each record file that settles after being
// written. Directories are watched non-recursively.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *logging.Logger
	debounce time.Duration
	changes  chan Change
	stop     chan struct{}
	stopOnce sync.Once

	// files restricts a watched directory to the named files when the
	// caller passed files rather than directories.
	files map[string]bool
	dirs  map[string]bool

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for watch errors.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must be quiet before it is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher over paths, each a directory or a record file.
func New(paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one path is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logging.NewNop(),
		debounce: DefaultDebounce,
		changes:  make(chan Change, 16),
		stop:     make(chan struct{}),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	dir := abs
	if !info.IsDir() {
		if !content.SupportedExtension(abs) {
			return fmt.Errorf("watching %s: unsupported record format", path)
		}
		w.files[abs] = true
		dir = filepath.Dir(abs)
	} else {
		w.dirs[abs] = true
	}

	// Editors replace files by rename, so the parent directory is watched
	// rather than the file itself.
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// Start begins processing filesystem events in a background goroutine.
// Call Stop to release the watcher.
func (w *Watcher) Start(ctx context.Context) {
	go w.processEvents(ctx)
}

// Stop stops the watcher and cancels pending changes.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		_ = w.watcher.Close()

		w.mu.Lock()
		defer w.mu.Unlock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
	})
}

// Changes returns the channel of settled record file changes.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			w.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && w.wanted(event.Name) {
				w.schedule(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "watch error", zap.Error(err))
		}
	}
}

// wanted reports whether a path under a watched directory is a record file
// the caller asked for.
func (w *Watcher) wanted(path string) bool {
	if !content.SupportedExtension(path) {
		return false
	}
	if w.files[path] {
		return true
	}
	return w.dirs[filepath.Dir(path)]
}

// schedule restarts the quiet period for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.changes <- Change{Path: path, Timestamp: time.Now()}:
		case <-w.stop:
		}
	})
}
