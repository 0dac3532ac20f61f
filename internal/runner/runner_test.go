package runner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hello7893/romdex/internal/scan"
	"github.com/hello7893/romdex/internal/status"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type nopIdentifier struct{}

func (nopIdentifier) Identify(string) (uint32, bool) { return 0, true }

func testFactory(t *testing.T, dir string, runs *atomic.Int32) SessionFactory {
	t.Helper()
	q := status.NewQueue(testLogger(), 64)
	go q.Start()
	t.Cleanup(q.Stop)
	return func(ctx context.Context) (*scan.Session, error) {
		if runs != nil {
			runs.Add(1)
		}
		return scan.NewSession(dir, []string{"bin"}, scan.TaskBuildCatalog, nopIdentifier{}, q, testLogger())
	}
}

func TestRunOnce_CompletesScan(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.bin", "b.bin"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", n, err)
		}
	}

	r := New(testFactory(t, dir, nil), 0, testLogger())
	sess, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	p := sess.Progress()
	if !p.Done || p.Scanned != 2 {
		t.Errorf("progress = %+v, want done 2/2", p)
	}
	if rp := r.Progress(); rp == nil || !rp.Done {
		t.Errorf("runner progress = %+v, want done snapshot", rp)
	}
}

func TestRunOnce_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A very low rate forces the limiter to block, so cancellation is
	// observed before the first step.
	r := New(testFactory(t, dir, nil), 0.001, testLogger())
	if _, err := r.RunOnce(ctx); err == nil {
		t.Fatal("RunOnce with canceled context succeeded, want error")
	}
}

func TestProgress_NilBeforeFirstRun(t *testing.T) {
	r := New(testFactory(t, t.TempDir(), nil), 0, testLogger())
	if p := r.Progress(); p != nil {
		t.Errorf("Progress before first run = %+v, want nil", p)
	}
}

func TestWatch_TriggersRescanOnCreate(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32

	r := New(testFactory(t, dir, &runs), 0, testLogger())
	r.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() { watchDone <- r.Watch(ctx, dir) }()

	// Give the watcher a moment to arm, then drop a file in.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "new.bin"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if runs.Load() >= 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if runs.Load() < 1 {
		t.Fatal("watch did not trigger a scan after a create event")
	}

	cancel()
	select {
	case err := <-watchDone:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}

func TestWatch_MissingRoot(t *testing.T) {
	r := New(testFactory(t, t.TempDir(), nil), 0, testLogger())
	err := r.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("Watch on a missing root succeeded, want error")
	}
}
