// Package filelock guards dataset and report files against concurrent
// writers. Scans can run from several shells at once; a flock around each
// output plus atomic temp-file-and-rename writes means readers never see a
// partial dataset copy.
package filelock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is an advisory file lock for one output path. The lock file lives
// next to the target with a ".lock" suffix so the target itself can be
// atomically renamed while locked.
type Lock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock guarding the given target path.
func New(target string) *Lock {
	lockPath := target + ".lock"
	return &Lock{
		flock: flock.New(lockPath),
		path:  lockPath,
	}
}

// Acquire takes the lock, blocking until available.
func (l *Lock) Acquire() error {
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	return nil
}

// TryAcquire takes the lock without blocking. Returns false when another
// process holds it.
func (l *Lock) TryAcquire() (bool, error) {
	ok, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("try lock %s: %w", l.path, err)
	}
	return ok, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

// WriteAtomic writes data to path via a temp file in the same directory
// followed by a rename. If anything fails the original file is untouched.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	// Temp file in the target directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("set permissions on temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}

// WriteJSONAtomic marshals v with indentation and writes it atomically
// under the path's lock.
func WriteJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	lock := New(path)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return WriteAtomic(path, data)
}
