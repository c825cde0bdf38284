// Package watcher reports debounced changes to a set of source files.
// Editors often save by writing a temp file and renaming it over the
// original, so the parent directories are watched and events are matched
// by path.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// FileWatcher watches individual files for changes.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool // cleaned absolute paths
	debounce time.Duration
	logger   *slog.Logger

	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	timer         *time.Timer
	timerMu       sync.Mutex

	cancel   context.CancelFunc
	stopOnce sync.Once
	doneCh   chan struct{}
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period before the callback fires.
func WithDebounce(d time.Duration) Option {
	return func(fw *FileWatcher) {
		if d > 0 {
			fw.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(fw *FileWatcher) {
		if logger != nil {
			fw.logger = logger
		}
	}
}

// New creates a watcher for files. Every file's directory must exist.
func New(files []string, opts ...Option) (*FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:     w,
		files:       make(map[string]bool),
		debounce:    DefaultDebounce,
		logger:      slog.New(slog.DiscardHandler),
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		fw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return fw, nil
}

// Start begins watching. callback receives the sorted absolute paths that
// changed during one debounce window and runs on the watcher goroutine.
func (fw *FileWatcher) Start(ctx context.Context, callback func(files []string)) {
	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.watch(ctx, callback)
}

// Stop stops the watcher and waits for its goroutine. It is safe to call
// more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

// Done is closed when the watch goroutine exits.
func (fw *FileWatcher) Done() <-chan struct{} {
	return fw.doneCh
}

func (fw *FileWatcher) watch(ctx context.Context, callback func(files []string)) {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			fw.stopTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			fw.accumulatedMu.Lock()
			fw.accumulated[filepath.Clean(event.Name)] = true
			fw.accumulatedMu.Unlock()
			fw.resetTimer(fireCh)

		case <-fireCh:
			if files := fw.drain(); len(files) > 0 && callback != nil {
				callback(files)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)
		}
	}
}

// relevant keeps writes and creates of watched files. A rename over the
// file shows up as a create.
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return fw.files[abs]
}

func (fw *FileWatcher) drain() []string {
	fw.accumulatedMu.Lock()
	defer fw.accumulatedMu.Unlock()
	files := make([]string, 0, len(fw.accumulated))
	for f := range fw.accumulated {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		files = append(files, abs)
	}
	fw.accumulated = make(map[string]bool)
	sort.Strings(files)
	return files
}

func (fw *FileWatcher) resetTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *FileWatcher) stopTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
}
