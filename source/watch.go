package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// LocaleClearer drops cached bundles for a locale.
type LocaleClearer interface {
	ClearLocale(locale string)
}

// Watcher invalidates cached locales when files under a directory source
// change. The directory and each locale subdirectory are watched.
type Watcher struct {
	dir      string
	cache    LocaleClearer
	fsw      *fsnotify.Watcher
	log      zerolog.Logger
	onChange func(locale string)
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger zerolog.Logger) WatchOption {
	return func(w *Watcher) {
		w.log = logger.With().Str("sys", "watcher").Logger()
	}
}

// WithOnChange registers a callback invoked after a locale is cleared.
func WithOnChange(fn func(locale string)) WatchOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// NewWatcher starts watching dir. Call Run to process events and Close
// (or cancel Run's context) to release the watch.
func NewWatcher(dir string, cache LocaleClearer, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:   filepath.Clean(dir),
		cache: cache,
		fsw:   fsw,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := fsw.Add(filepath.Join(w.dir, e.Name())); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Run processes filesystem events until ctx is done or the watch is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.fsw.Close()
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// Close stops the watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return
	}

	locale := w.localeFor(ev.Name)
	if locale == "" {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.log.Warn().Err(err).Str("path", ev.Name).Msg("watch new locale failed")
			}
		}
	}

	w.log.Debug().Str("locale", locale).Str("op", ev.Op.String()).Str("path", ev.Name).Msg("bundle changed")
	w.cache.ClearLocale(locale)
	if w.onChange != nil {
		w.onChange(locale)
	}
}

// localeFor returns the locale directory name containing path, or "" when
// path is outside the watched tree.
func (w *Watcher) localeFor(path string) string {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return ""
	}
	locale, _, _ := strings.Cut(rel, "/")
	if strings.HasPrefix(locale, ".") {
		return ""
	}
	return locale
}
