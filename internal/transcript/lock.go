package transcript

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockSuffix is appended to the output path to form the sidecar lock
// file. Locking a sidecar rather than the output itself keeps the lock
// stable across the atomic rename.
const lockSuffix = ".lock"

// WithOutputLock runs handler while holding an exclusive advisory flock
// on the sidecar lock file for path. A lock held by another process is
// reported as ErrOutputLocked immediately, not waited on.
func WithOutputLock(path string, handler func() error) error {
	lockPath := path + lockSuffix

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return fmt.Errorf("opening lock file: %w", err)
	}

	err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		if err == unix.EWOULDBLOCK {
			return fmt.Errorf("%w: %s", ErrOutputLocked, path)
		}

		return fmt.Errorf("locking %s: %w", lockPath, err)
	}

	defer func() {
		// Order matters: remove while holding the lock, then unlock,
		// then close.
		_ = os.Remove(lockPath)
		_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
		_ = file.Close()
	}()

	return handler()
}
