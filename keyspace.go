package munin

import (
	"fmt"
	"iter"

	muninerrors "github.com/tamirms/munin/errors"
	intbits "github.com/tamirms/munin/internal/bits"
)

// maxKeys is the largest key space. The table holds up to four slots per
// key and its size must fit FastRange32's uint32 range.
const maxKeys = 1 << 30

// KeySpaceOption is a functional option for configuring a KeySpace.
type KeySpaceOption func(*keySpaceConfig)

type keySpaceConfig struct {
	hasher HasherID
	seed   uint64
}

func defaultKeySpaceConfig() *keySpaceConfig {
	return &keySpaceConfig{
		hasher: HasherXXH3,
		seed:   0x6d756e696e6b7331, // Arbitrary default; overridden via WithSeed
	}
}

// WithHasher selects the hash function used to place keys.
func WithHasher(id HasherID) KeySpaceOption {
	return func(c *keySpaceConfig) {
		c.hasher = id
	}
}

// WithSeed sets the hash seed.
func WithSeed(seed uint64) KeySpaceOption {
	return func(c *keySpaceConfig) {
		c.seed = seed
	}
}

// KeySpace is a Session over a fixed list of string keys. Key i of the list
// owns slot i.
//
// Lookups hash the key into an open-addressing table with linear probing.
// The table is sized to a power of two at least twice the key count, so
// probe sequences stay short.
//
// Thread Safety: a KeySpace is immutable; all methods are safe for
// concurrent use.
type KeySpace struct {
	keys   []string
	table  []uint32 // index+1 of the key in each table slot, 0 for empty
	hash   keyHashFunc
	hasher HasherID
	seed   uint64
}

var _ Session[string] = (*KeySpace)(nil)

// NewKeySpace builds a key space from keys. The keys slice is copied.
func NewKeySpace(keys []string, opts ...KeySpaceOption) (*KeySpace, error) {
	if len(keys) == 0 {
		return nil, muninerrors.ErrEmptyKeySpace
	}
	if uint64(len(keys)) > maxKeys {
		return nil, muninerrors.ErrTooManyKeys
	}

	cfg := defaultKeySpaceConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	hash, err := newKeyHashFunc(cfg.hasher)
	if err != nil {
		return nil, err
	}

	ks := &KeySpace{
		keys:   append([]string(nil), keys...),
		table:  make([]uint32, tableSize(len(keys))),
		hash:   hash,
		hasher: cfg.hasher,
		seed:   cfg.seed,
	}
	for i, key := range ks.keys {
		pos, found := ks.probe(key)
		if found {
			return nil, fmt.Errorf("%w: %q", muninerrors.ErrDuplicateKey, key)
		}
		ks.table[pos] = uint32(i) + 1
	}
	return ks, nil
}

// tableSize returns the smallest power of two >= 2n.
func tableSize(n int) int {
	size := 1
	for size < 2*n {
		size <<= 1
	}
	return size
}

// probe walks key's probe sequence. It returns the table position holding
// key and true, or the first empty position and false.
func (ks *KeySpace) probe(key string) (int, bool) {
	mask := len(ks.table) - 1
	pos := int(intbits.FastRange32(ks.hash(key, ks.seed), uint32(len(ks.table))))
	for {
		ref := ks.table[pos]
		if ref == 0 {
			return pos, false
		}
		if ks.keys[ref-1] == key {
			return pos, true
		}
		pos = (pos + 1) & mask
	}
}

// MaskLength returns the number of keys.
func (ks *KeySpace) MaskLength() int {
	return len(ks.keys)
}

// IndexForKey returns the index of key. Keys outside the key space return
// an error wrapping ErrUnknownKey.
func (ks *KeySpace) IndexForKey(key string) (int, error) {
	pos, found := ks.probe(key)
	if !found {
		return 0, fmt.Errorf("%w: %q", muninerrors.ErrUnknownKey, key)
	}
	return int(ks.table[pos] - 1), nil
}

// KeyAtIndex returns the key owning idx. It panics if idx is out of
// [0, MaskLength()), like slice indexing.
func (ks *KeySpace) KeyAtIndex(idx int) string {
	return ks.keys[idx]
}

// Keys returns (index, key) pairs in index order.
func (ks *KeySpace) Keys() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, key := range ks.keys {
			if !yield(i, key) {
				return
			}
		}
	}
}

// Hasher returns the hash function the key space was built with.
func (ks *KeySpace) Hasher() HasherID {
	return ks.hasher
}

// Seed returns the hash seed the key space was built with.
func (ks *KeySpace) Seed() uint64 {
	return ks.seed
}
