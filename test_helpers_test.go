package munin

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"iter"
	"math/rand/v2"
	"slices"
	"testing"

	muninerrors "github.com/tamirms/munin/errors"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns an RNG seeded from the test name, so every test gets
// its own reproducible stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateKeys creates n distinct attribute names with a random component.
func generateKeys(rng *rand.Rand, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("attr-%016x-%d", rng.Uint64(), i)
	}
	return keys
}

// listSession is a minimal Session over a closed key list, independent of
// KeySpace. Key i owns slot i.
type listSession struct {
	keys  []string
	index map[string]int
}

func newListSession(keys ...string) *listSession {
	s := &listSession{keys: keys, index: make(map[string]int, len(keys))}
	for i, k := range keys {
		s.index[k] = i
	}
	return s
}

func (s *listSession) MaskLength() int { return len(s.keys) }

func (s *listSession) IndexForKey(key string) (int, error) {
	idx, ok := s.index[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", muninerrors.ErrUnknownKey, key)
	}
	return idx, nil
}

func (s *listSession) KeyAtIndex(idx int) string { return s.keys[idx] }

// collectWindows materializes every window of seq.
func collectWindows[T any](seq iter.Seq[iter.Seq[T]]) [][]T {
	var out [][]T
	for w := range seq {
		out = append(out, slices.Collect(w))
	}
	return out
}

// collectPairs materializes a key/value sequence, keeping order.
func collectPairs[K comparable, V any](seq iter.Seq2[K, V]) ([]K, []V) {
	var ks []K
	var vs []V
	for k, v := range seq {
		ks = append(ks, k)
		vs = append(vs, v)
	}
	return ks, vs
}
