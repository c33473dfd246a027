package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// restore downloads the latest snapshot to cfg.Path. A missing snapshot keeps the
// local file (if any) untouched.
func (e *Engine) restore(ctx context.Context) error {
	if e.snapshotter == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.SnapshotTimeout)
	defer cancel()

	start := time.Now()
	found, err := e.snapshotter.Restore(ctx, e.cfg.Path)
	e.observeOperation("restore_snapshot", "", e.cfg.Path, time.Since(start), err, 0, map[string]interface{}{
		"found": found,
	})
	if err != nil {
		return fmt.Errorf("failed to restore database snapshot: %w", err)
	}
	if found {
		// WAL and shared-memory files belong to the previous database file.
		for _, suffix := range []string{"-wal", "-shm"} {
			if err := os.Remove(e.cfg.Path + suffix); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove stale %s file: %w", suffix, err)
			}
		}
		e.logInfo(ctx, "Restored database snapshot", map[string]interface{}{"path": e.cfg.Path})
	}
	return nil
}

// persist writes a consistent copy of the database with VACUUM INTO and hands it
// to the snapshotter. The caller must hold e.mu.
func (e *Engine) persist(ctx context.Context) error {
	if e.snapshotter == nil || e.cfg.inMemory() {
		return nil
	}

	start := time.Now()
	tmp := filepath.Join(filepath.Dir(e.cfg.Path), fmt.Sprintf(".%s.snapshot-%d", filepath.Base(e.cfg.Path), start.UnixNano()))
	defer os.Remove(tmp)

	var size int64
	err := func() error {
		if _, err := e.db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
			return fmt.Errorf("failed to write database snapshot: %w", err)
		}
		if info, err := os.Stat(tmp); err == nil {
			size = info.Size()
		}
		if err := e.snapshotter.Persist(ctx, tmp); err != nil {
			return fmt.Errorf("failed to persist database snapshot: %w", err)
		}
		return nil
	}()

	e.observeOperation("persist_snapshot", "", e.cfg.Path, time.Since(start), err, size, nil)
	if err != nil {
		e.logWarn(ctx, "Database snapshot failed", err, map[string]interface{}{"path": e.cfg.Path})
	}
	return err
}
