//go:build !linux

package munin

// prefaultRegion is a no-op outside Linux.
func prefaultRegion(data []byte) {}
