package sqlite

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// acquireLock opens the sidecar lock file, creating it if needed, and takes
// an exclusive non-blocking advisory lock on it. A held lock means another
// process has this vault open; callers fail fast rather than share the
// database.
func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("already in use by another process: %s: %w", path, err)
	}

	return f, nil
}

// releaseLock drops the advisory lock by closing its descriptor. The lock
// file itself stays on disk; flock state does not survive the descriptor.
func releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	return f.Close()
}
