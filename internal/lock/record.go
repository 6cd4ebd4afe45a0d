package lock

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/config"
	"github.com/shirou/gopsutil/v4/process"
)

// Record is the advisory metadata stored in a lock file.
type Record struct {
	PID       int
	Host      string
	Timestamp time.Time
}

// writeRecord writes the holder metadata and syncs it to disk.
func writeRecord(file *os.File, now time.Time) error {
	host, _ := os.Hostname()
	data := fmt.Sprintf("pid=%d\nhost=%s\ntimestamp=%s\n", os.Getpid(), host, now.UTC().Format(time.RFC3339))
	if _, err := file.WriteString(data); err != nil {
		return err
	}
	return file.Sync()
}

// ReadRecord parses the metadata of the lock file at path. Unknown or
// malformed lines are ignored; a file written by an older launcher simply
// yields a partially filled Record.
func ReadRecord(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	var rec Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			if pid, err := strconv.Atoi(value); err == nil {
				rec.PID = pid
			}
		case "host":
			rec.Host = value
		case "timestamp":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				rec.Timestamp = ts
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("scan lock file: %w", err)
	}

	return rec, nil
}

// reportStaleHolder logs who held a lock that is about to be reclaimed.
// The result is informational: the lock is reclaimed either way.
func reportStaleHolder(ctx context.Context, path string, logger config.Logger) {
	rec, err := ReadRecord(path)
	if err != nil {
		logger.Warn("reclaiming stale lock", "path", path, "record_error", err)
		return
	}

	state := "unknown"
	if host, _ := os.Hostname(); rec.PID > 0 && rec.Host == host {
		if alive, err := process.PidExistsWithContext(ctx, int32(rec.PID)); err == nil {
			if alive {
				state = "alive"
			} else {
				state = "dead"
			}
		}
	}

	logger.Warn("reclaiming stale lock",
		"path", path,
		"holder_pid", rec.PID,
		"holder_host", rec.Host,
		"acquired_at", rec.Timestamp,
		"holder_state", state,
	)
}
