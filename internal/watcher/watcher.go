// Package watcher reports changes to Markdown files under the notes root.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/dossier/internal/storage"
)

// Change kinds.
const (
	Created = "created"
	Updated = "updated"
	Removed = "removed"
)

// DefaultDebounce is the quiet period after which pending changes settle.
const DefaultDebounce = 300 * time.Millisecond

// Change is one observed file change, path relative to the root with
// forward slashes.
type Change struct {
	Kind string
	Path string
}

// EventCallback is called for every Markdown change as it is observed. A
// removed or renamed directory is reported once, under its own path.
type EventCallback func(kind, path string)

// SettleCallback receives the changes gathered during one debounce window.
type SettleCallback func(ctx context.Context, changes []Change)

// Watcher follows a directory tree with fsnotify.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *slog.Logger
	onChange EventCallback
	onSettle SettleCallback
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before changes settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// OnChange registers cb for individual changes.
func OnChange(cb EventCallback) Option {
	return func(w *Watcher) { w.onChange = cb }
}

// OnSettle registers cb for debounced batches.
func OnSettle(cb SettleCallback) Option {
	return func(w *Watcher) { w.onSettle = cb }
}

// New creates a Watcher for root.
func New(root string, logger *slog.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{root: root, debounce: DefaultDebounce, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the root until ctx is cancelled. Directories created at
// runtime are added to the watch list and the Markdown files already inside
// them are reported as created. Renames report the old path as removed; the
// new path arrives as its own create event. The same holds for directories,
// so moving a folder settles like any other change.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dirs := make(map[string]struct{})
	if err := w.addDirsRecursive(fw, w.root, dirs); err != nil {
		return err
	}
	w.logger.Info("watcher: started", slog.String("root", w.root))

	var (
		pending  []Change
		timer    *time.Timer
		settleCh <-chan time.Time
	)
	record := func(kind, abs string) {
		rel, ok := w.relative(abs)
		if !ok {
			return
		}
		w.logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", kind))
		if w.onChange != nil {
			w.onChange(kind, rel)
		}
		pending = append(pending, Change{Kind: kind, Path: rel})
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		}
		settleCh = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			settleCh = nil
			batch := coalesce(pending)
			pending = nil
			if w.onSettle != nil && len(batch) > 0 {
				w.onSettle(ctx, batch)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.addDirsRecursive(fw, ev.Name, dirs); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					for _, f := range markdownFiles(ev.Name) {
						record(Created, f)
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if _, isDir := dirs[ev.Name]; isDir {
					forgetDir(fw, dirs, ev.Name)
					record(Removed, ev.Name)
					continue
				}
			}
			if !storage.IsMarkdown(ev.Name) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				record(Created, ev.Name)
			case ev.Op&fsnotify.Write != 0:
				record(Updated, ev.Name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				record(Removed, ev.Name)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) relative(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ignored reports whether any element of p below the root is hidden. This
// also covers the atomic-write temp files.
func (w *Watcher) ignored(p string) bool {
	rel, ok := w.relative(p)
	if !ok {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if storage.IsHidden(part) {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its visible subdirectories to fw and
// records them in dirs.
func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string, dirs map[string]struct{}) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && storage.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return err
		}
		dirs[path] = struct{}{}
		return nil
	})
}

// forgetDir drops dir and everything below it from dirs. The watches may
// already be gone, so removal errors are ignored.
func forgetDir(fw *fsnotify.Watcher, dirs map[string]struct{}, dir string) {
	prefix := dir + string(filepath.Separator)
	for d := range dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			_ = fw.Remove(d)
			delete(dirs, d)
		}
	}
}

func markdownFiles(dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && storage.IsHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if storage.IsMarkdown(path) && !storage.IsHidden(d.Name()) {
			out = append(out, path)
		}
		return nil
	})
	return out
}

// coalesce keeps the last change per path, in order of last occurrence.
func coalesce(changes []Change) []Change {
	last := make(map[string]int, len(changes))
	for i, c := range changes {
		last[c.Path] = i
	}
	out := make([]Change, 0, len(last))
	for i, c := range changes {
		if last[c.Path] == i {
			out = append(out, c)
		}
	}
	return out
}
