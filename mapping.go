package munin

import (
	"fmt"
	"iter"
	"maps"

	muninerrors "github.com/tamirms/munin/errors"
	intbits "github.com/tamirms/munin/internal/bits"
)

// SessionMapping is a read-only map from session keys to values, stored as
// a dense slice with one slot per session index.
//
// It suits sparse data over a fixed key universe shared by many mappings:
// each mapping costs one V plus one bit per slot and no per-key overhead.
//
// A slot is present when a value was written to it at construction and the
// value passes the configured presence filter. Get reads any slot; All,
// Items, Keys, Contains and NumPresent only see present slots; Values dumps
// every slot.
//
// Thread Safety: a SessionMapping is immutable once built. Concurrent reads
// are safe as long as the session's reads are.
type SessionMapping[K comparable, V any] struct {
	store   []V
	present intbits.Bitset
	session Session[K]
	skip    func(V) bool
}

// NewSessionMapping builds a mapping from input. Every slot starts as
// defaultValue; each input value is written to the slot
// session.IndexForKey(key).
//
// Errors from IndexForKey are returned as is. An index outside
// [0, session.MaskLength()) returns ErrIndexOutOfRange. On error no mapping
// is returned.
func NewSessionMapping[K comparable, V any](session Session[K], input map[K]V, defaultValue V, opts ...MappingOption[V]) (*SessionMapping[K, V], error) {
	return CollectSessionMapping(session, maps.All(input), defaultValue, opts...)
}

// CollectSessionMapping builds a mapping from a sequence of key/value pairs.
// A key seen twice keeps its last value.
func CollectSessionMapping[K comparable, V any](session Session[K], pairs iter.Seq2[K, V], defaultValue V, opts ...MappingOption[V]) (*SessionMapping[K, V], error) {
	cfg := defaultMappingConfig[V]()
	for _, opt := range opts {
		opt(cfg)
	}

	n := session.MaskLength()
	if n < 0 {
		return nil, muninerrors.ErrInvalidMaskLength
	}

	m := &SessionMapping[K, V]{
		store:   make([]V, n),
		present: intbits.NewBitset(n),
		session: session,
		skip:    cfg.skip,
	}
	for i := range m.store {
		m.store[i] = defaultValue
	}

	for key, value := range pairs {
		idx, err := m.slot(key)
		if err != nil {
			return nil, err
		}
		m.store[idx] = value
		m.present.Set(idx)
	}
	return m, nil
}

// slot translates key through the session and bounds-checks the result.
func (m *SessionMapping[K, V]) slot(key K) (int, error) {
	idx, err := m.session.IndexForKey(key)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(m.store) {
		return 0, fmt.Errorf("%w: key %v maps to %d, mask length %d",
			muninerrors.ErrIndexOutOfRange, key, idx, len(m.store))
	}
	return idx, nil
}

// isPresent reports whether slot idx holds a logical entry.
func (m *SessionMapping[K, V]) isPresent(idx int) bool {
	if !m.present.Test(idx) {
		return false
	}
	return m.skip == nil || !m.skip(m.store[idx])
}

// Get returns the value stored for key, or the default value if the slot
// was never written. The two cases are indistinguishable; use Contains to
// tell them apart.
func (m *SessionMapping[K, V]) Get(key K) (V, error) {
	idx, err := m.slot(key)
	if err != nil {
		var zero V
		return zero, err
	}
	return m.store[idx], nil
}

// All returns the present entries in ascending slot order.
func (m *SessionMapping[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for idx := m.present.NextSet(0); idx >= 0; idx = m.present.NextSet(idx + 1) {
			if m.skip != nil && m.skip(m.store[idx]) {
				continue
			}
			if !yield(m.session.KeyAtIndex(idx), m.store[idx]) {
				return
			}
		}
	}
}

// Items is the same as All.
func (m *SessionMapping[K, V]) Items() iter.Seq2[K, V] {
	return m.All()
}

// Keys returns the keys of present entries in ascending slot order.
func (m *SessionMapping[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns the raw content of every slot in index order, unset slots
// included as the default value. It always yields Len() values.
func (m *SessionMapping[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.store {
			if !yield(v) {
				return
			}
		}
	}
}

// PresentValues returns the values of present entries in ascending slot
// order, matching Keys position for position.
func (m *SessionMapping[K, V]) PresentValues() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of slots, which is the session's mask length at
// construction. Use NumPresent for the number of entries.
func (m *SessionMapping[K, V]) Len() int {
	return len(m.store)
}

// NumPresent returns the number of present entries.
func (m *SessionMapping[K, V]) NumPresent() int {
	if m.skip == nil {
		return m.present.Count()
	}
	n := 0
	for range m.All() {
		n++
	}
	return n
}

// Contains reports whether key is one of the keys yielded by Keys. Keys
// unknown to the session are reported as absent.
func (m *SessionMapping[K, V]) Contains(key K) bool {
	idx, err := m.slot(key)
	if err != nil {
		return false
	}
	return m.isPresent(idx)
}

// Session returns the session the mapping was built on.
func (m *SessionMapping[K, V]) Session() Session[K] {
	return m.session
}
