//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(fd *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(fd.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
}

func unmapFile(data []byte) error {
	return unix.Munmap(data)
}

func advise(data []byte, h Hint) error {
	advice := unix.MADV_NORMAL
	switch h {
	case Sequential:
		advice = unix.MADV_SEQUENTIAL
	case WillNeed:
		advice = unix.MADV_WILLNEED
	}

	// Hints are best effort; EINVAL means the platform rejected this one.
	if err := unix.Madvise(data, advice); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
