package munin

import (
	"fmt"
	"unsafe"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	muninerrors "github.com/tamirms/munin/errors"
)

// HasherID identifies the hash function a KeySpace uses to place keys in
// its lookup table. The ID is persisted in key space files.
type HasherID uint16

const (
	// HasherXXH3 is xxHash3-64 with a 64-bit seed. It is the default.
	HasherXXH3 HasherID = 0
	// HasherMurmur3 is MurmurHash3 x64-128 truncated to 64 bits. Only the low
	// 32 bits of the seed are used.
	HasherMurmur3 HasherID = 1
)

// String returns the flag-friendly name of the hasher.
func (h HasherID) String() string {
	switch h {
	case HasherXXH3:
		return "xxh3"
	case HasherMurmur3:
		return "murmur3"
	default:
		return fmt.Sprintf("HasherID(%d)", uint16(h))
	}
}

// ParseHasher returns the hasher named s ("xxh3" or "murmur3").
func ParseHasher(s string) (HasherID, error) {
	switch s {
	case "xxh3":
		return HasherXXH3, nil
	case "murmur3":
		return HasherMurmur3, nil
	default:
		return 0, fmt.Errorf("%w: %q", muninerrors.ErrUnknownHasher, s)
	}
}

// keyHashFunc hashes a key with a seed.
type keyHashFunc func(key string, seed uint64) uint64

// newKeyHashFunc returns the hash function for id.
func newKeyHashFunc(id HasherID) (keyHashFunc, error) {
	switch id {
	case HasherXXH3:
		return xxh3.HashStringSeed, nil
	case HasherMurmur3:
		return murmurHashString, nil
	default:
		return nil, fmt.Errorf("%w: %d", muninerrors.ErrUnknownHasher, uint16(id))
	}
}

// murmurHashString hashes key without copying it. murmur3 does not retain
// or modify its input.
func murmurHashString(key string, seed uint64) uint64 {
	b := unsafe.Slice(unsafe.StringData(key), len(key))
	return murmur3.Sum64WithSeed(b, uint32(seed))
}
