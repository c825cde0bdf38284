package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - New rejects an empty file list and a missing directory
// - A write to a watched file fires the callback once after the debounce
// - Rapid writes are coalesced into one callback
// - Changes to other files in the same directory are ignored
// - Replacing the file through a rename is reported
// - Stop is idempotent and stops the goroutine

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) record(files []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, files)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func setup(t *testing.T) (string, string) {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "app.ts")
	require.NoError(t, os.WriteFile(path, []byte("let a = 1;\n"), 0644))
	return dir, path
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]string{filepath.Join(t.TempDir(), "missing", "app.ts")})
	assert.Error(t, err)
}

func TestFileWatcher_WriteFiresOnce(t *testing.T) {
	t.Parallel()
	_, path := setup(t)

	fw, err := New([]string{path}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer fw.Stop()

	rec := &recorder{}
	fw.Start(context.Background(), rec.record)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("let a = 2;\n"), 0644))
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{path}, rec.snapshot()[0])

	// Nothing else arrives once the burst is reported.
	time.Sleep(150 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()
	dir, path := setup(t)

	fw, err := New([]string{path}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer fw.Stop()

	rec := &recorder{}
	fw.Start(context.Background(), rec.record)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.ts"), []byte("x"), 0644))
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestFileWatcher_RenameOver(t *testing.T) {
	t.Parallel()
	dir, path := setup(t)

	fw, err := New([]string{path}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer fw.Stop()

	rec := &recorder{}
	fw.Start(context.Background(), rec.record)

	tmp := filepath.Join(dir, ".app.ts.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("let b = 1;\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{path}, rec.snapshot()[0])
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	_, path := setup(t)

	fw, err := New([]string{path})
	require.NoError(t, err)
	fw.Start(context.Background(), nil)

	require.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())

	select {
	case <-fw.Done():
	case <-time.After(time.Second):
		t.Fatal("watch goroutine did not exit")
	}
}
