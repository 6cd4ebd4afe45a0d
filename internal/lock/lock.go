// Package lock provides an advisory, cross-process file lock built on
// exclusive file creation.
//
// A lock is a file that exists only while it is held. Contenders poll until
// the file disappears, reclaim it once its modification time is older than
// the staleness threshold, and give up after a bounded wait. The record
// written into the file (pid, host, timestamp) is diagnostic only; it never
// influences who gets the lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/config"
)

const (
	// DefaultStaleAfter is the lock age after which it is presumed abandoned.
	DefaultStaleAfter = 5 * time.Minute
	// DefaultRetryInterval is the sleep between acquisition attempts.
	DefaultRetryInterval = 200 * time.Millisecond
	// DefaultMaxWait bounds the total time spent waiting for a lock.
	DefaultMaxWait = 60 * time.Second
)

// ErrLockTimeout is returned when the lock could not be acquired within MaxWait.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Options tunes Acquire. Zero fields take the package defaults.
type Options struct {
	StaleAfter    time.Duration
	RetryInterval time.Duration
	MaxWait       time.Duration
	// Now stamps the lock record and is compared against lock file mtimes
	// for staleness. Defaults to time.Now. The MaxWait budget is always
	// measured on the monotonic clock.
	Now    func() time.Time
	Logger config.Logger
}

func (o Options) withDefaults() Options {
	if o.StaleAfter <= 0 {
		o.StaleAfter = DefaultStaleAfter
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultRetryInterval
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = config.DefaultLogger()
	}
	return o
}

// Lock is a held file lock. Release it exactly once or more; extra calls are no-ops.
type Lock struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire blocks until it holds the lock at path, the wait exceeds
// opts.MaxWait (ErrLockTimeout) or ctx is done.
//
// A lock file older than opts.StaleAfter is removed and acquisition is
// retried immediately. A slow but live holder can lose its lock this way;
// callers must keep their own scratch state private to the attempt.
func Acquire(ctx context.Context, path string, opts Options) (*Lock, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err == nil {
			if err := writeRecord(file, opts.Now()); err != nil {
				file.Close()
				os.Remove(path)
				return nil, fmt.Errorf("write lock data: %w", err)
			}
			opts.Logger.Debug("lock acquired", "path", path)
			return &Lock{path: path, file: file}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		stale, err := isLockStale(path, opts.StaleAfter, opts.Now())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// released between our create and stat
				continue
			}
			return nil, fmt.Errorf("inspect lock file: %w", err)
		}

		if stale {
			reportStaleHolder(ctx, path, opts.Logger)
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("remove stale lock: %w", err)
			}
			continue
		}

		if time.Since(start) > opts.MaxWait {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, path)
		}

		timer := time.NewTimer(opts.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Release closes and removes the lock file. Removing an already absent file
// is not an error, so Release is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}

	return nil
}

// isLockStale reports whether the lock file was last modified more than
// staleAfter before now.
func isLockStale(lockPath string, staleAfter time.Duration, now time.Time) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}

	return now.Sub(info.ModTime()) > staleAfter, nil
}
