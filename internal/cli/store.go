package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/config"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/store/jsonfile"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/store/sqlite"
	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

// openStore builds the configured store plus a locker guarding mutations.
// The sqlite backend leans on the database's own locking, so its locker is
// a no-op.
func openStore(operation string) (task.Store, task.Locker, error) {
	switch storeKind {
	case config.StoreSQLite:
		st, err := sqlite.Open(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return st, noopLocker{}, nil
	case config.StoreJSON, "":
		return jsonfile.New(tasksFile), jsonfile.NewLock(tasksFile, operation), nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (valid: %s, %s)", storeKind, config.StoreJSON, config.StoreSQLite)
	}
}

// closeStore releases store resources for backends that hold any.
func closeStore(st task.Store) {
	if c, ok := st.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("close store", "error", err)
		}
	}
}

type noopLocker struct{}

func (noopLocker) Acquire() error { return nil }
func (noopLocker) Release()       {}

// persist writes changed dependency lists back through the store. A single
// owner uses the cheap partial update, several owners rewrite everything.
// Stores that cannot express an operation answer ErrUnsupported, which
// degrades to the next strategy instead of failing.
func persist(ctx context.Context, st task.Store, snap *task.Snapshot, changed []task.Ref) error {
	switch len(changed) {
	case 0:
		return nil
	case 1:
		deps, ok := snap.Dependencies(changed[0])
		if !ok {
			return fmt.Errorf("task %s: %w", changed[0], task.ErrNotFound)
		}
		err := st.ApplyPartialUpdate(ctx, changed[0], task.FieldUpdate{Dependencies: &deps})
		if err != nil && errors.Is(err, task.ErrUnsupported) {
			slog.Warn("store cannot update single tasks, rewriting everything")
			err = st.BulkRewrite(ctx, snap)
		}
		if err != nil {
			if errors.Is(err, task.ErrUnsupported) {
				slog.Warn("store cannot persist changes, skipping")
				return nil
			}
			return err
		}
	default:
		if err := st.BulkRewrite(ctx, snap); err != nil {
			if errors.Is(err, task.ErrUnsupported) {
				slog.Warn("store cannot persist changes, skipping")
				return nil
			}
			return err
		}
	}

	if err := st.RegenerateArtifacts(ctx); err != nil {
		if errors.Is(err, task.ErrUnsupported) {
			slog.Debug("store keeps no artifacts, skipping regeneration")
			return nil
		}
		return err
	}
	return nil
}
