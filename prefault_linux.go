//go:build linux

package munin

import "golang.org/x/sys/unix"

// MADV_POPULATE_WRITE was added in Linux 5.14.
const madvPopulateWrite = 23

// prefaultRegion asks the kernel to populate the pages of a freshly mapped
// key space file before it is encoded. Older kernels return EINVAL, which
// is ignored along with any other error.
func prefaultRegion(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, madvPopulateWrite)
}
