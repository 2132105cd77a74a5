package munin

// Session defines a fixed universe of keys and a bijection between those
// keys and the slot indices [0, MaskLength()).
//
// A SessionMapping borrows its session: the session must outlive every
// mapping built on it. Mappings never cache translations, so a session whose
// scheme changes between lookups is observed live.
//
// Implementations used from several goroutines must make IndexForKey and
// KeyAtIndex safe for concurrent reads. KeySpace satisfies this.
type Session[K comparable] interface {
	// MaskLength returns the number of addressable slots.
	MaskLength() int

	// IndexForKey returns the slot owned by key. Unknown keys return an
	// implementation-defined error.
	IndexForKey(key K) (int, error)

	// KeyAtIndex returns the key owning slot idx.
	KeyAtIndex(idx int) K
}

// SessionFuncs adapts plain functions to the Session interface.
type SessionFuncs[K comparable] struct {
	Length   func() int
	IndexFor func(key K) (int, error)
	KeyAt    func(idx int) K
}

// MaskLength calls f.Length.
func (f SessionFuncs[K]) MaskLength() int { return f.Length() }

// IndexForKey calls f.IndexFor.
func (f SessionFuncs[K]) IndexForKey(key K) (int, error) { return f.IndexFor(key) }

// KeyAtIndex calls f.KeyAt.
func (f SessionFuncs[K]) KeyAtIndex(idx int) K { return f.KeyAt(idx) }
