package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(50*time.Millisecond, dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { changes <- paths })
	}()

	catalog := filepath.Join(dir, "catalog.yaml")
	script := filepath.Join(dir, "pulse.tengo")
	for i := range 3 {
		require.NoError(t, os.WriteFile(catalog, []byte{byte('a' + i)}, 0o600))
	}
	require.NoError(t, os.WriteFile(script, []byte("x := 1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{catalog, script}, paths)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case paths := <-changes:
		t.Fatalf("unexpected second batch: %v", paths)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(0, filepath.Join(t.TempDir(), "absent"))
	assert.ErrorContains(t, err, "watching")
}

func TestWatcher_CloseEndsRun(t *testing.T) {
	w, err := NewWatcher(0, t.TempDir())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), func([]string) {}) }()

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
