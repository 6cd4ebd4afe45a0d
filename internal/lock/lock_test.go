package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingLogger captures warn messages for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (r *recordingLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (r *recordingLogger) Info(msg string, keysAndValues ...interface{})  {}
func (r *recordingLogger) Error(msg string, keysAndValues ...interface{}) {}
func (r *recordingLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func fastOptions() Options {
	return Options{
		StaleAfter:    time.Minute,
		RetryInterval: 5 * time.Millisecond,
		MaxWait:       2 * time.Second,
	}
}

func TestAcquire(t *testing.T) {
	t.Run("creates lock file with metadata", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		opts := fastOptions()
		opts.Now = func() time.Time { return fixed }

		lk, err := Acquire(context.Background(), path, opts)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer lk.Release()

		rec, err := ReadRecord(path)
		if err != nil {
			t.Fatalf("ReadRecord failed: %v", err)
		}
		if rec.PID != os.Getpid() {
			t.Errorf("PID = %d, want %d", rec.PID, os.Getpid())
		}
		if !rec.Timestamp.Equal(fixed) {
			t.Errorf("Timestamp = %v, want %v", rec.Timestamp, fixed)
		}
		if host, _ := os.Hostname(); rec.Host != host {
			t.Errorf("Host = %q, want %q", rec.Host, host)
		}
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "slot.lock")

		lk, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer lk.Release()

		if lk.Path() != path {
			t.Errorf("Path() = %q, want %q", lk.Path(), path)
		}
	})

	t.Run("times out while held", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")

		held, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatalf("first Acquire failed: %v", err)
		}
		defer held.Release()

		opts := fastOptions()
		opts.MaxWait = 50 * time.Millisecond

		start := time.Now()
		_, err = Acquire(context.Background(), path, opts)
		if !errors.Is(err, ErrLockTimeout) {
			t.Fatalf("expected ErrLockTimeout, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error %q should name the lock path", err)
		}
		if elapsed := time.Since(start); elapsed < opts.MaxWait {
			t.Errorf("gave up after %v, before MaxWait %v", elapsed, opts.MaxWait)
		}
	})

	t.Run("times out with a frozen clock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")

		held, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatalf("first Acquire failed: %v", err)
		}
		defer held.Release()

		frozen := time.Now()
		opts := fastOptions()
		opts.MaxWait = 50 * time.Millisecond
		opts.Now = func() time.Time { return frozen }

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err = Acquire(ctx, path, opts)
		if !errors.Is(err, ErrLockTimeout) {
			t.Fatalf("expected ErrLockTimeout, got %v", err)
		}
	})

	t.Run("waits for release", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")

		held, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatalf("first Acquire failed: %v", err)
		}

		go func() {
			time.Sleep(30 * time.Millisecond)
			held.Release()
		}()

		lk, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatalf("second Acquire failed: %v", err)
		}
		lk.Release()
	})

	t.Run("reclaims stale lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")
		if err := os.WriteFile(path, []byte("pid=999999\nhost=elsewhere\ntimestamp=2020-01-01T00:00:00Z\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatal(err)
		}

		logger := &recordingLogger{}
		opts := fastOptions()
		opts.MaxWait = 10 * time.Millisecond
		opts.Logger = logger

		lk, err := Acquire(context.Background(), path, opts)
		if err != nil {
			t.Fatalf("Acquire failed on stale lock: %v", err)
		}
		defer lk.Release()

		rec, err := ReadRecord(path)
		if err != nil {
			t.Fatal(err)
		}
		if rec.PID != os.Getpid() {
			t.Errorf("lock not rewritten by new holder: pid=%d", rec.PID)
		}
		if len(logger.warns) != 1 || logger.warns[0] != "reclaiming stale lock" {
			t.Errorf("warns = %v, want one stale reclaim", logger.warns)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")

		held, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer held.Release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = Acquire(ctx, path, fastOptions())
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})

	t.Run("cancelled context fails fast", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := Acquire(ctx, filepath.Join(t.TempDir(), "slot.lock"), fastOptions()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLockRelease(t *testing.T) {
	t.Run("removes lock file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")

		lk, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatal(err)
		}
		if err := lk.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("lock file should be removed")
		}
	})

	t.Run("double release is safe", func(t *testing.T) {
		lk, err := Acquire(context.Background(), filepath.Join(t.TempDir(), "slot.lock"), fastOptions())
		if err != nil {
			t.Fatal(err)
		}
		if err := lk.Release(); err != nil {
			t.Fatalf("first Release failed: %v", err)
		}
		if err := lk.Release(); err != nil {
			t.Errorf("second Release failed: %v", err)
		}
	})

	t.Run("release after external removal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slot.lock")
		lk, err := Acquire(context.Background(), path, fastOptions())
		if err != nil {
			t.Fatal(err)
		}
		os.Remove(path)

		if err := lk.Release(); err != nil {
			t.Errorf("Release failed: %v", err)
		}
	})

	t.Run("nil lock", func(t *testing.T) {
		var lk *Lock
		if err := lk.Release(); err != nil {
			t.Errorf("Release on nil lock failed: %v", err)
		}
	})
}

func TestAcquire_MutualExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slot.lock")

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			lk, err := Acquire(context.Background(), path, fastOptions())
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}

			n := inside.Add(1)
			for {
				seen := maxSeen.Load()
				if n <= seen || maxSeen.CompareAndSwap(seen, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)

			if err := lk.Release(); err != nil {
				t.Errorf("Release failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxSeen.Load() != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen.Load())
	}
}

func TestReadRecord_Tolerant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slot.lock")
	if err := os.WriteFile(path, []byte("garbage\npid=abc\nhost=box\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	rec, err := ReadRecord(path)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if rec.PID != 0 || rec.Host != "box" || !rec.Timestamp.IsZero() {
		t.Errorf("ReadRecord() = %+v", rec)
	}
}
