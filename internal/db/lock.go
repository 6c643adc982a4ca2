package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another server already owns the data dir.
var ErrLocked = errors.New("data directory is locked by another process")

// Lock is an exclusive advisory lock on a file in the data dir.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes a non-blocking exclusive lock on path.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Path() string {
	return l.fl.Path()
}

func (l *Lock) Release() error {
	return l.fl.Unlock()
}
