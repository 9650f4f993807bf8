package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes():
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func assertQuiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case c := <-w.Changes():
		t.Fatalf("unexpected change for %s", c.Path)
	case <-time.After(d):
	}
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0o600))
	_, err = New([]string{notes})
	assert.ErrorContains(t, err, "unsupported record format")
}

func TestWatcher_Directory(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	path := filepath.Join(dir, "aluminum.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: aluminum\n"), 0o600))

	c := waitChange(t, w)
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, c.Path)
	assert.False(t, c.Timestamp.IsZero())

	// Non-record files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o600))
	assertQuiet(t, w, 200*time.Millisecond)
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, WithDebounce(150*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	path := filepath.Join(dir, "steel.json")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"id":"steel"}`), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	waitChange(t, w)
	assertQuiet(t, w, 400*time.Millisecond)
}

func TestWatcher_FileFilter(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "copper.yaml")
	other := filepath.Join(dir, "brass.yaml")
	require.NoError(t, os.WriteFile(target, []byte("id: copper\n"), 0o600))

	w, err := New([]string{target}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(other, []byte("id: brass\n"), 0o600))
	assertQuiet(t, w, 200*time.Millisecond)

	require.NoError(t, os.WriteFile(target, []byte("id: copper\nname: Copper\n"), 0o600))
	c := waitChange(t, w)
	assert.Equal(t, filepath.Base(target), filepath.Base(c.Path))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New([]string{t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	w.Stop()
	w.Stop()
}
