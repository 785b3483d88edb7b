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

func TestWatcherReportsWatchedFile(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "safeCarObs.json")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(dump, []byte("State:"), 0o644))

	w, err := New(10*time.Millisecond, dump)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(dump, []byte("State: ( Car.Move )"), 0o644))

	select {
	case got := <-w.Events:
		want, _ := filepath.Abs(dump)
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for watched file")
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := New(0, filepath.Join(t.TempDir(), "dump.txt"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events
	assert.False(t, ok)
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(0, filepath.Join(t.TempDir(), "missing", "dump.txt"))
	assert.Error(t, err)
}

func TestLoop(t *testing.T) {
	w := &Watcher{Events: make(chan string, 2), Errors: make(chan error, 1)}
	w.Events <- "/a"
	w.Events <- "/b"
	w.Errors <- errors.New("overflow")

	var seen []string
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(w.Events)
	}()
	err := Loop(ctx, w, func(_ context.Context, path string) error {
		seen = append(seen, path)
		if path == "/a" {
			return errors.New("parse failed")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, seen)
}

func TestLoopCancelled(t *testing.T) {
	w := &Watcher{Events: make(chan string), Errors: make(chan error)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Loop(ctx, w, func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
