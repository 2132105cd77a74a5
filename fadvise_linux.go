//go:build linux

package munin

import "golang.org/x/sys/unix"

// fadviseSequential hints to the kernel that a key space file is about to be
// read front to back. Best-effort: errors are ignored.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
