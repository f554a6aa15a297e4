// Package watch re-runs the build when one of its inputs changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/logfields"
	"git.home.luguber.info/inful/ayamsys/internal/sources"
)

// DefaultDebounce collapses editor save bursts into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Trigger runs one full regeneration.
type Trigger func(ctx context.Context) error

// Inputs returns the files a build depends on: the umbrella header, every
// translation unit and the project headers the generator read.
func Inputs(l *layout.Layout, umbrella string, headers ...string) []string {
	out := append([]string{umbrella}, sources.Select(l).Paths()...)
	for _, h := range headers {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}

// Watcher monitors a fixed set of files. Their directories are watched rather
// than the files, so replace-by-rename saves are seen.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	debounce time.Duration
	trigger  Trigger
	fsw      *fsnotify.Watcher
	running  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// New creates a watcher for paths. Call Run to start it.
func New(paths []string, trigger Trigger, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no paths")
	}
	w := &Watcher{
		files:    make(map[string]struct{}, len(paths)),
		debounce: DefaultDebounce,
		trigger:  trigger,
	}
	for _, opt := range opts {
		opt(w)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw
	if err := w.Track(paths...); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Track adds paths to the watched set. Once Run has started it must only be
// called from the trigger, which runs on the watch loop.
func (w *Watcher) Track(paths ...string) error {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", p, err)
		}
		if _, ok := w.files[abs]; ok {
			continue
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if slices.Contains(w.dirs, dir) {
			continue
		}
		w.dirs = append(w.dirs, dir)
		if w.running {
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// Files lists the watched files, sorted.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Dirs lists the watched directories.
func (w *Watcher) Dirs() []string { return slices.Clone(w.dirs) }

// Run watches until ctx is done. Rebuilds never overlap: events arriving during
// a rebuild schedule the next one. A failed rebuild is logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()
	for _, dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	w.running = true
	slog.Info("Watching build inputs", logfields.Count(len(w.files)), slog.Int("dirs", len(w.dirs)))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("Input changed", logfields.File(ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			start := time.Now()
			if err := w.trigger(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err), logfields.Elapsed(start))
				continue
			}
			slog.Info("Rebuild completed", logfields.Elapsed(start))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}
