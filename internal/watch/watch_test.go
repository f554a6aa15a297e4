package watch

import (
	"context"
	stdErrors "errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ayamsys/internal/layout"
	"git.home.luguber.info/inful/ayamsys/internal/sources"
)

func TestInputs(t *testing.T) {
	l := layout.Resolve("/proj")
	got := Inputs(l, "/proj/wrapper.h")
	require.Len(t, got, len(sources.TranslationUnits)+1)
	require.Equal(t, "/proj/wrapper.h", got[0])
	require.Equal(t, filepath.Join(l.Nurbs, "apt.c"), got[1])
}

func TestInputs_AddsHeaders(t *testing.T) {
	l := layout.Resolve("/proj")
	nb := filepath.Join(l.Nurbs, "nb.h")
	got := Inputs(l, "/proj/wrapper.h", "/proj/wrapper.h", filepath.Join(l.Kernel, "ayam.h"), nb, nb)
	require.Len(t, got, len(sources.TranslationUnits)+3)
	require.Equal(t, []string{filepath.Join(l.Kernel, "ayam.h"), nb}, got[len(got)-2:])
}

func TestTrack_AddsFilesAndDirs(t *testing.T) {
	w, err := New([]string{"/a/x.c"}, func(context.Context) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	require.NoError(t, w.Track("/a/x.c", "/a/x.h", "/b/y.h"))
	require.Equal(t, []string{"/a", "/b"}, w.Dirs())
	require.Equal(t, []string{"/a/x.c", "/a/x.h", "/b/y.h"}, w.Files())
	require.True(t, w.relevant(fsnotify.Event{Name: "/b/y.h", Op: fsnotify.Write}))
}

func TestNew_DeduplicatesDirs(t *testing.T) {
	w, err := New([]string{"/a/x.c", "/a/y.c", "/b/z.h"}, func(context.Context) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })
	require.Equal(t, []string{"/a", "/b"}, w.Dirs())

	_, err = New(nil, nil)
	require.Error(t, err)
}

func TestRelevant(t *testing.T) {
	w := &Watcher{files: map[string]struct{}{"/a/x.c": {}}}
	require.True(t, w.relevant(fsnotify.Event{Name: "/a/x.c", Op: fsnotify.Write}))
	require.True(t, w.relevant(fsnotify.Event{Name: "/a/x.c", Op: fsnotify.Remove}))
	require.False(t, w.relevant(fsnotify.Event{Name: "/a/x.c", Op: fsnotify.Chmod}))
	require.False(t, w.relevant(fsnotify.Event{Name: "/a/other.c", Op: fsnotify.Write}))
}

func TestRun_DebouncesBurstIntoOneRebuild(t *testing.T) {
	if testing.Short() {
		t.Skip("filesystem notification test")
	}
	dir := t.TempDir()
	watched := filepath.Join(dir, "wrapper.h")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(watched, []byte("v0"), 0o600))

	var runs atomic.Int32
	ran := make(chan struct{}, 8)
	w, err := New([]string{watched}, func(context.Context) error {
		runs.Add(1)
		ran <- struct{}{}
		return stdErrors.New("build failed")
	}, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register its directories.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o600))
	for i := range 5 {
		require.NoError(t, os.WriteFile(watched, []byte{byte('a' + i)}, 0o600))
	}

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after input change")
	}
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())

	// A failed rebuild keeps the watcher alive.
	require.NoError(t, os.WriteFile(watched, []byte("again"), 0o600))
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher stopped after a failed rebuild")
	}
	require.Equal(t, int32(2), runs.Load())
}

func TestRun_HeaderInAnotherDirTriggersRebuild(t *testing.T) {
	if testing.Short() {
		t.Skip("filesystem notification test")
	}
	root := t.TempDir()
	umbrella := filepath.Join(root, "wrapper.h")
	headerDir := filepath.Join(root, "ayam", "ayam", "src")
	require.NoError(t, os.MkdirAll(headerDir, 0o750))
	header := filepath.Join(headerDir, "ayam.h")
	require.NoError(t, os.WriteFile(umbrella, []byte("#include \"ayam.h\"\n"), 0o600))
	require.NoError(t, os.WriteFile(header, []byte("int ay_x(void);\n"), 0o600))

	ran := make(chan struct{}, 4)
	w, err := New([]string{umbrella}, func(context.Context) error {
		ran <- struct{}{}
		return nil
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Track(header))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(header, []byte("int ay_y(void);\n"), 0o600))
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after header change")
	}
}
