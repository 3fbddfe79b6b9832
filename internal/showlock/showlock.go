// Package showlock keeps two vistopia processes from writing the same show.
//
// Each show gets an advisory lock file under the state directory. The lock is
// held for the duration of one save operation and released afterwards; a
// crashed process releases it implicitly when its file descriptor closes.
package showlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another process holds the lock for a show.
var ErrHeld = errors.New("show is locked by another process")

// Lock is a held per-show lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Path returns the lock file location.
func Path(dir string, showID int64) string {
	return filepath.Join(dir, "show-"+strconv.FormatInt(showID, 10)+".lock")
}

// Acquire takes the lock for showID without blocking.
func Acquire(dir string, showID int64) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := Path(dir, showID)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("show %d: %w (lock file %s)", showID, ErrHeld, path)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Release unlocks. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
