package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const lockFileName = ".taskdeps.lock"

// LockInfo describes the owner of a tasks-file lock.
type LockInfo struct {
	PID       int       `json:"pid"`
	Operation string    `json:"operation"`
	StartedAt time.Time `json:"started_at"`
}

// FileLock guards a tasks file against concurrent writers from other
// processes. The lock file lives next to the file it guards.
type FileLock struct {
	path      string
	operation string
}

// NewLock returns a lock for the tasks file at tasksPath. operation names
// the command holding the lock, for diagnostics.
func NewLock(tasksPath, operation string) *FileLock {
	return &FileLock{
		path:      filepath.Join(filepath.Dir(tasksPath), lockFileName),
		operation: operation,
	}
}

// Acquire creates the lock file. Returns nil on success. If the lock exists
// and the owning PID is dead, the stale lock is reclaimed.
func (l *FileLock) Acquire() error {
	info := LockInfo{
		PID:       os.Getpid(),
		Operation: l.operation,
		StartedAt: time.Now(),
	}

	err := writeLock(l.path, &info)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create lock %s: %w", l.path, err)
	}

	// lock exists — check if stale
	existing, readErr := readLock(l.path)
	if readErr != nil {
		return fmt.Errorf("tasks file is locked (could not read lock: %v)", readErr)
	}

	if isProcessAlive(existing.PID) {
		return fmt.Errorf("tasks file locked by PID %d since %s (%s)",
			existing.PID, existing.StartedAt.Format(time.RFC3339), existing.Operation)
	}

	// stale lock — reclaim
	slog.Warn("reclaiming stale lock", "path", l.path, "stale_pid", existing.PID, "operation", existing.Operation)
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("remove stale lock: %w", err)
	}

	if err := writeLock(l.path, &info); err != nil {
		return fmt.Errorf("acquire after stale removal: %w", err)
	}
	return nil
}

// Release removes the lock file. It is idempotent.
func (l *FileLock) Release() {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to release lock", "path", l.path, "error", err)
	}
}

func readLock(path string) (*LockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse lock: %w", err)
	}
	return &info, nil
}

// writeLock atomically creates the lock file using O_CREATE|O_EXCL.
func writeLock(path string, info *LockInfo) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	encErr := json.NewEncoder(f).Encode(info)
	closeErr := f.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

// isProcessAlive checks if a process with the given PID exists and is running.
func isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 checks existence without actually sending a signal
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
