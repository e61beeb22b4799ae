// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filelock writes output files atomically while holding an
// advisory lock, so readers never see a partially written document and two
// runs targeting the same path do not interleave.
package filelock

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockSuffix is appended to the target path to form the lock file path.
const lockSuffix = ".lock"

// WriteFunc streams file content to w.
type WriteFunc func(w io.Writer) error

// LockAndWrite acquires an exclusive lock on path+".lock", streams the
// content produced by write into a temp file beside path and renames it
// over path. The lock file is left in place for later writers.
func LockAndWrite(path string, write WriteFunc) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	lockPath := path + lockSuffix
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	defer lock.Unlock()

	return AtomicWrite(path, write)
}

// AtomicWrite streams content into a temp file in the target directory,
// syncs it and renames it to path. On any failure the temp file is removed
// and an existing file at path is left untouched.
func AtomicWrite(path string, write WriteFunc) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	committed = true
	return nil
}
