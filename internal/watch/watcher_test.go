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

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, ignore []string) <-chan []string {
	t.Helper()
	w, err := New(Options{Root: root, Ignore: ignore, Debounce: 50 * time.Millisecond, MinInterval: -1})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	batches := make(chan []string, 10)
	go func() {
		_ = w.Run(ctx, func(_ context.Context, paths []string) error {
			batches <- paths
			return nil
		})
	}()
	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))

	batches := startWatcher(t, root, []string{"**/vendor/**"})

	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package dep"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# x"), 0o644))

	got := waitBatch(t, batches)
	for _, p := range got {
		assert.NotContains(t, p, "vendor")
	}
	seen := map[string]bool{}
	for _, p := range got {
		seen[p] = true
	}
	// Both writes normally land in one batch; collect a second if not.
	if !seen["src/main.go"] || !seen["README.md"] {
		for _, p := range waitBatch(t, batches) {
			seen[p] = true
		}
	}
	assert.True(t, seen["src/main.go"])
	assert.True(t, seen["README.md"])
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	batches := startWatcher(t, root, nil)

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	assert.Contains(t, waitBatch(t, batches), "pkg")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.go"), []byte("package pkg"), 0o644))
	assert.Contains(t, waitBatch(t, batches), "pkg/util.go")
}

func TestWatcher_CallbackErrorStopsRun(t *testing.T) {
	root := t.TempDir()
	w, err := New(Options{Root: root, Debounce: 20 * time.Millisecond, MinInterval: -1})
	require.NoError(t, err)
	defer w.Close()

	stop := errors.New("stop")
	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), func(context.Context, []string) error { return stop })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	select {
	case err := <-done:
		assert.ErrorIs(t, err, stop)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	w, err := New(Options{Root: t.TempDir()})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx, func(context.Context, []string) error { return nil }), context.Canceled)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(Options{Root: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}
