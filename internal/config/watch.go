package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchFiles calls onChange whenever one of paths is written, created,
// renamed or removed. Parent directories are watched rather than the files
// themselves so that editors replacing a file, or a file appearing later,
// are both observed. Directories that do not exist are skipped.
// The watcher stops when ctx is done.
func WatchFiles(ctx context.Context, paths []string, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	wanted := make(map[string]struct{}, len(paths))
	added := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		wanted[p] = struct{}{}

		dir := filepath.Dir(p)
		if _, ok := added[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			continue
		}
		added[dir] = struct{}{}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, ok := wanted[filepath.Clean(event.Name)]; !ok {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					onChange(event.Name)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watcher errors are dropped; the periodic refresh still runs.
			}
		}
	}()

	return nil
}

// Watch reloads the configuration whenever the file changes. The change
// callback set with SetOnChange receives every successfully reloaded config.
func (l *Loader) Watch(ctx context.Context, onError func(error)) error {
	return WatchFiles(ctx, []string{l.path}, func(string) {
		if _, err := l.Reload(); err != nil && onError != nil {
			onError(err)
		}
	})
}
