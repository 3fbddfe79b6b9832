// Package fileutil provides crash-safe file writes for downloaded artifacts.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether path exists. Any stat error other than not-exist
// counts as present so callers never overwrite something they cannot inspect.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// createTemp opens a hidden temp file next to dest.
func createTemp(dest string) (*os.File, error) {
	dir := filepath.Dir(dest)
	file, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w", dest, err)
	}
	return file, nil
}

// commit closes tmp and renames it onto dest.
func commit(tmp *os.File, dest string) error {
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// discard closes and removes tmp, ignoring errors.
func discard(tmp *os.File) {
	_ = tmp.Close()
	_ = os.Remove(tmp.Name())
}

// WriteAtomic streams r into dest via a temp sibling, so dest only ever
// appears complete. It returns the number of bytes written.
func WriteAtomic(dest string, r io.Reader) (int64, error) {
	tmp, err := createTemp(dest)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(tmp, r)
	if err != nil {
		discard(tmp)
		return written, fmt.Errorf("write %s: %w", dest, err)
	}
	if err := commit(tmp, dest); err != nil {
		return written, err
	}
	return written, nil
}
