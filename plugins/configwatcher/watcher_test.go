package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherInvokesCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"info\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var calls int64
	w := New(path, func() { atomic.AddInt64(&calls, 1) }, Config{
		DebounceDelay: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("callback not invoked after file change")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"info\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var calls int64
	w := New(path, func() { atomic.AddInt64(&calls, 1) }, Config{
		DebounceDelay: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("unrelated"), 0o600); err != nil {
		t.Fatalf("write other file: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Errorf("callback invoked %d times for unrelated file", got)
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := New("/nonexistent/dir/config.toml", func() {}, DefaultConfig())
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("Start() expected error for missing directory")
	}
}

func TestWatcherStopIsSafe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w := New(path, func() {}, DefaultConfig())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	w.Stop()
	w.Stop()
}
