package registry

import (
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const lockFileSuffixConstant = ".lock"

// Locker guards a registry read-modify-write cycle.
type Locker interface {
	Lock() error
	Unlock() error
}

// LockFactory produces a Locker for the given lock file path.
type LockFactory func(lockFilePath string) Locker

// FileLockFactory returns advisory file locks backed by flock(2).
func FileLockFactory(lockFilePath string) Locker {
	return flock.New(lockFilePath)
}

// NoopLockFactory returns locks that never block.
func NoopLockFactory(string) Locker {
	return noopLocker{}
}

type noopLocker struct{}

func (noopLocker) Lock() error   { return nil }
func (noopLocker) Unlock() error { return nil }

func defaultLockFactory(fileSystem afero.Fs) LockFactory {
	if _, isOperatingSystem := fileSystem.(*afero.OsFs); isOperatingSystem {
		return FileLockFactory
	}
	return NoopLockFactory
}
