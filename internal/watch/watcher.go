// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch re-runs a callback when files under a directory tree change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/tombee/repopacker/internal/log"
	"github.com/tombee/repopacker/internal/pack"
)

const (
	// DefaultDebounce is how long the tree must be quiet before a rerun.
	DefaultDebounce = 250 * time.Millisecond

	// DefaultMinInterval is the minimum time between two reruns.
	DefaultMinInterval = time.Second
)

// Options configures a Watcher.
type Options struct {
	// Root is the directory to watch recursively.
	Root string

	// Ignore lists doublestar patterns, relative to Root, whose changes are
	// not reported. Ignored directories are not watched.
	Ignore []string

	// Debounce and MinInterval default to DefaultDebounce and
	// DefaultMinInterval. A negative MinInterval disables rate limiting.
	Debounce    time.Duration
	MinInterval time.Duration

	Logger *slog.Logger
}

// Watcher batches filesystem events under a root directory.
type Watcher struct {
	root     string
	ignore   []string
	debounce time.Duration
	limiter  *rate.Limiter
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
}

// New creates a Watcher and starts watching every directory under
// opts.Root that is not ignored.
func New(opts Options) (*Watcher, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	limit := rate.Inf
	switch {
	case opts.MinInterval == 0:
		limit = rate.Every(DefaultMinInterval)
	case opts.MinInterval > 0:
		limit = rate.Every(opts.MinInterval)
	}

	w := &Watcher{
		root:     root,
		ignore:   opts.Ignore,
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, 1),
		fsw:      fsw,
		logger:   log.WithComponent(logger, "watch").With(slog.String("root", root)),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls onChange with the sorted relative paths changed since the last
// call, once the tree has been quiet for the debounce window. It returns
// when ctx is done or onChange fails.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string) error) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("watching for changes")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("file watcher event channel closed")
			}
			rel, keep := w.handleEvent(event)
			if !keep {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("file watcher error channel closed")
			}
			w.logger.Warn("file watcher error", log.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return err
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			w.logger.Debug("changes detected", log.Int("files", len(paths)))
			if err := onChange(ctx, paths); err != nil {
				return err
			}
		}
	}
}

// handleEvent returns the relative path of a reportable event. New
// directories are added to the watch list.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if pack.Matches(w.ignore, rel) {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if err := w.addTree(event.Name); err != nil {
			w.logger.Debug("failed to watch new path", log.String("path", rel), log.Error(err))
		}
	}
	return rel, true
}

// addTree watches dir and every non-ignored directory below it. Paths that
// are not directories are ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			rel, err := filepath.Rel(w.root, path)
			if err == nil && pack.Matches(w.ignore, filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
