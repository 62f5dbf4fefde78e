package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/typstmath/internal/watcher"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "failed to write %s", path)
}

func startWatcher(t *testing.T, paths ...string) <-chan []watcher.Change {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Paths:       paths,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.typ")
	writeFile(t, path, "$x$")

	onChange := startWatcher(t, path)

	// Rapid writes should coalesce into a single batch
	for i := 0; i < 10; i++ {
		writeFile(t, path, fmt.Sprintf("$x^%d$", i))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case batch := <-onChange:
		require.Equal(t, []watcher.Change{{Path: path}}, batch)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.typ")
	otherPath := filepath.Join(dir, "other.typ")
	writeFile(t, path, "$x$")
	writeFile(t, otherPath, "initial")

	onChange := startWatcher(t, path)

	writeFile(t, otherPath, "other content")

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_BatchesSeveralFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.typ")
	b := filepath.Join(dir, "b.typ")
	writeFile(t, a, "$a$")
	writeFile(t, b, "$b$")

	onChange := startWatcher(t, b, a)

	writeFile(t, b, "$beta$")
	writeFile(t, a, "$alpha$")

	select {
	case batch := <-onChange:
		require.Equal(t, []watcher.Change{{Path: a}, {Path: b}}, batch)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.typ")
	writeFile(t, path, "$x$")

	onChange := startWatcher(t, path)

	require.NoError(t, os.Remove(path))

	select {
	case batch := <-onChange:
		require.Equal(t, []watcher.Change{{Path: path, Removed: true}}, batch)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}
}

func TestWatcher_SeesReplaceOnSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.typ")
	writeFile(t, path, "$x$")

	onChange := startWatcher(t, path)

	// Editors often write a temp file and rename it over the original
	temp := filepath.Join(dir, ".notes.typ.swp")
	writeFile(t, temp, "$y$")
	require.NoError(t, os.Rename(temp, path))

	select {
	case batch := <-onChange:
		require.Equal(t, []watcher.Change{{Path: path}}, batch)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for replaced file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.typ")
	writeFile(t, path, "$x$")

	w, err := watcher.New(watcher.DefaultConfig(path))
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestNew_RequiresPaths(t *testing.T) {
	_, err := watcher.New(watcher.Config{DebounceDur: time.Millisecond})
	require.Error(t, err)
}

func TestWatcher_PathsAreAbsolute(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig("b.typ", "a.typ"))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(wd, "a.typ"), filepath.Join(wd, "b.typ")}, w.Paths())
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/test/notes.typ")

	assert.Equal(t, []string{"/test/notes.typ"}, cfg.Paths)
	assert.Equal(t, 150*time.Millisecond, cfg.DebounceDur)
}
