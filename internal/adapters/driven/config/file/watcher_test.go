package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_CallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[scan]\nconcurrency = 1\n")

	var calls atomic.Int32
	w, err := NewWatcher(path, 20*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Ensure the new modification time is observably later.
	time.Sleep(50 * time.Millisecond)
	writeConfig(t, dir, "[scan]\nconcurrency = 2\n")

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	var calls atomic.Int32
	w, err := NewWatcher(path, 10*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0600))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_StopsOnContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	w, err := NewWatcher(path, 0, func() {})
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultReloadDelay, w.delay)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent", ConfigFile), 0, func() {})
	assert.Error(t, err)
}
