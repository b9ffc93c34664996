//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapReadOnly(f *os.File, size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}

// adviseRandom is a hint; failures are ignored.
func adviseRandom(data []byte) {
	_ = unix.Madvise(data, unix.MADV_RANDOM)
}
