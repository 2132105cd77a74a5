package munin

import (
	"errors"
	"maps"
	"slices"
	"testing"

	muninerrors "github.com/tamirms/munin/errors"
)

var testUniverse = []string{"artist", "album", "genre", "year", "rating", "comment", "lyrics", "mood"}

func TestSessionMappingRoundTrip(t *testing.T) {
	session := newListSession(testUniverse...)
	input := map[string]string{
		"genre":  "impressionism",
		"artist": "Debussy",
		"mood":   "calm",
	}

	m, err := NewSessionMapping[string, string](session, input, "")
	if err != nil {
		t.Fatal(err)
	}

	if got := maps.Collect(m.Items()); !maps.Equal(got, input) {
		t.Errorf("Items() = %v, want %v", got, input)
	}
	if got := maps.Collect(m.All()); !maps.Equal(got, input) {
		t.Errorf("All() = %v, want %v", got, input)
	}
	for k, v := range input {
		got, err := m.Get(k)
		if err != nil {
			t.Fatalf("Get(%q): %v", k, err)
		}
		if got != v {
			t.Errorf("Get(%q) = %q, want %q", k, got, v)
		}
		if !m.Contains(k) {
			t.Errorf("Contains(%q) = false", k)
		}
	}
	if got := m.NumPresent(); got != len(input) {
		t.Errorf("NumPresent() = %d, want %d", got, len(input))
	}
}

// TestSessionMappingIndexOrder verifies that iteration follows slot order,
// not input order.
func TestSessionMappingIndexOrder(t *testing.T) {
	session := newListSession(testUniverse...)
	pairs := func(yield func(string, int) bool) {
		for _, k := range []string{"mood", "album", "rating", "artist"} {
			if !yield(k, len(k)) {
				return
			}
		}
	}

	m, err := CollectSessionMapping(session, pairs, -1)
	if err != nil {
		t.Fatal(err)
	}

	keys, values := collectPairs(m.All())
	wantKeys := []string{"artist", "album", "rating", "mood"}
	if !slices.Equal(keys, wantKeys) {
		t.Errorf("All() keys = %v, want %v", keys, wantKeys)
	}
	if !slices.Equal(values, []int{6, 5, 6, 4}) {
		t.Errorf("All() values = %v", values)
	}
	if got := slices.Collect(m.Keys()); !slices.Equal(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}
	if got := slices.Collect(m.PresentValues()); !slices.Equal(got, values) {
		t.Errorf("PresentValues() = %v, want %v", got, values)
	}
}

func TestSessionMappingDefaultValue(t *testing.T) {
	session := newListSession(testUniverse...)
	m, err := NewSessionMapping(session, map[string]int{"year": 1905}, -1)
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range testUniverse {
		got, err := m.Get(k)
		if err != nil {
			t.Fatalf("Get(%q): %v", k, err)
		}
		want := -1
		if k == "year" {
			want = 1905
		}
		if got != want {
			t.Errorf("Get(%q) = %d, want %d", k, got, want)
		}
		if m.Contains(k) != (k == "year") {
			t.Errorf("Contains(%q) = %v", k, m.Contains(k))
		}
	}
}

// TestSessionMappingValuesDumpsEverySlot checks that Values includes unset
// slots while Keys and Items do not.
func TestSessionMappingValuesDumpsEverySlot(t *testing.T) {
	session := newListSession(testUniverse...)
	m, err := NewSessionMapping(session, map[string]int{"album": 3, "lyrics": 9}, 0)
	if err != nil {
		t.Fatal(err)
	}

	values := slices.Collect(m.Values())
	if len(values) != session.MaskLength() {
		t.Fatalf("len(Values()) = %d, want %d", len(values), session.MaskLength())
	}
	want := []int{0, 3, 0, 0, 0, 0, 9, 0}
	if !slices.Equal(values, want) {
		t.Errorf("Values() = %v, want %v", values, want)
	}

	keys := slices.Collect(m.Keys())
	items, _ := collectPairs(m.Items())
	if len(keys) > len(values) || len(items) > len(values) {
		t.Errorf("Keys()=%d Items()=%d exceed Values()=%d", len(keys), len(items), len(values))
	}
	if len(keys) != 2 || len(items) != 2 {
		t.Errorf("Keys()=%v Items()=%v, want 2 entries each", keys, items)
	}
}

// TestSessionMappingLenReportsSlotCount pins Len to the number of slots
// (the session's mask length), not the number of stored entries.
func TestSessionMappingLenReportsSlotCount(t *testing.T) {
	session := newListSession(testUniverse...)
	m, err := NewSessionMapping(session, map[string]bool{"mood": true}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Len(); got != len(testUniverse) {
		t.Errorf("Len() = %d, want mask length %d", got, len(testUniverse))
	}
	if got := m.NumPresent(); got != 1 {
		t.Errorf("NumPresent() = %d, want 1", got)
	}

	empty, err := NewSessionMapping(session, map[string]bool{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != len(testUniverse) || empty.NumPresent() != 0 {
		t.Errorf("empty mapping: Len()=%d NumPresent()=%d", empty.Len(), empty.NumPresent())
	}
}

// TestSessionMappingStoredZeroIsPresent checks the default presence rule:
// a written value counts even when it is the zero value or equals the
// default.
func TestSessionMappingStoredZeroIsPresent(t *testing.T) {
	session := newListSession(testUniverse...)
	input := map[string]int{"rating": 0, "year": -1, "album": 4}
	m, err := NewSessionMapping(session, input, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := maps.Collect(m.All()); !maps.Equal(got, input) {
		t.Errorf("All() = %v, want %v", got, input)
	}
	if !m.Contains("rating") || !m.Contains("year") {
		t.Error("written zero or default value reported absent")
	}
}

// TestSessionMappingExcludeZero covers the falsy policy: written zero values
// vanish from the entry views but remain readable through Get.
func TestSessionMappingExcludeZero(t *testing.T) {
	session := newListSession(testUniverse...)
	input := map[string]string{"artist": "Satie", "comment": "", "genre": "minimalism"}

	m, err := NewSessionMapping(session, input, "", ExcludeZero[string]())
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{}
	for k, v := range input {
		if v != "" {
			want[k] = v
		}
	}
	if got := maps.Collect(m.Items()); !maps.Equal(got, want) {
		t.Errorf("Items() = %v, want %v", got, want)
	}
	if m.Contains("comment") {
		t.Error(`Contains("comment") = true for a zero value`)
	}
	if got := m.NumPresent(); got != len(want) {
		t.Errorf("NumPresent() = %d, want %d", got, len(want))
	}
	if got, err := m.Get("comment"); err != nil || got != "" {
		t.Errorf(`Get("comment") = %q, %v`, got, err)
	}
	if got := len(slices.Collect(m.Values())); got != len(testUniverse) {
		t.Errorf("len(Values()) = %d, want %d", got, len(testUniverse))
	}
}

func TestSessionMappingWithPresence(t *testing.T) {
	session := newListSession(testUniverse...)
	input := map[string]int{"artist": 1, "album": 2, "genre": 3, "year": 4}

	m, err := NewSessionMapping(session, input, 0, WithPresence(func(v int) bool { return v%2 == 0 }))
	if err != nil {
		t.Fatal(err)
	}
	if got := slices.Collect(m.Keys()); !slices.Equal(got, []string{"album", "year"}) {
		t.Errorf("Keys() = %v, want [album year]", got)
	}

	// A nil predicate restores the default rule.
	all, err := NewSessionMapping(session, input, 0, WithPresence[int](nil))
	if err != nil {
		t.Fatal(err)
	}
	if got := all.NumPresent(); got != len(input) {
		t.Errorf("NumPresent() = %d, want %d", got, len(input))
	}
}

func TestSessionMappingUnknownKey(t *testing.T) {
	session := newListSession(testUniverse...)

	m, err := NewSessionMapping(session, map[string]int{"artist": 1, "tempo": 120}, 0)
	if !errors.Is(err, muninerrors.ErrUnknownKey) {
		t.Fatalf("NewSessionMapping error = %v, want ErrUnknownKey", err)
	}
	if m != nil {
		t.Error("failed construction returned a mapping")
	}

	m, err = NewSessionMapping(session, map[string]int{"artist": 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get("tempo"); !errors.Is(err, muninerrors.ErrUnknownKey) {
		t.Errorf("Get(unknown) error = %v, want ErrUnknownKey", err)
	}
	if m.Contains("tempo") {
		t.Error("Contains(unknown) = true")
	}
}

// TestSessionMappingPropagatesSessionError checks that session errors are
// returned as the same value, not wrapped.
func TestSessionMappingPropagatesSessionError(t *testing.T) {
	sessionErr := errors.New("attribute not registered")
	session := SessionFuncs[int]{
		Length:   func() int { return 4 },
		IndexFor: func(key int) (int, error) { return 0, sessionErr },
		KeyAt:    func(idx int) int { return idx },
	}

	_, err := NewSessionMapping(session, map[int]string{1: "x"}, "")
	if err != sessionErr {
		t.Errorf("error = %v, want the session's error unchanged", err)
	}
}

func TestSessionMappingIndexOutOfRange(t *testing.T) {
	session := SessionFuncs[int]{
		Length:   func() int { return 4 },
		IndexFor: func(key int) (int, error) { return key, nil },
		KeyAt:    func(idx int) int { return idx },
	}

	for _, key := range []int{4, 100, -1} {
		m, err := NewSessionMapping(session, map[int]string{0: "ok", key: "bad"}, "")
		if !errors.Is(err, muninerrors.ErrIndexOutOfRange) {
			t.Errorf("key %d: error = %v, want ErrIndexOutOfRange", key, err)
		}
		if m != nil {
			t.Errorf("key %d: failed construction returned a mapping", key)
		}
	}

	m, err := NewSessionMapping(session, map[int]string{2: "two"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(9); !errors.Is(err, muninerrors.ErrIndexOutOfRange) {
		t.Errorf("Get(9) error = %v, want ErrIndexOutOfRange", err)
	}
	if m.Contains(9) {
		t.Error("Contains(9) = true")
	}
}

func TestSessionMappingNegativeMaskLength(t *testing.T) {
	session := SessionFuncs[int]{
		Length:   func() int { return -1 },
		IndexFor: func(key int) (int, error) { return key, nil },
		KeyAt:    func(idx int) int { return idx },
	}
	if _, err := NewSessionMapping(session, map[int]int{}, 0); !errors.Is(err, muninerrors.ErrInvalidMaskLength) {
		t.Errorf("error = %v, want ErrInvalidMaskLength", err)
	}
}

func TestSessionMappingEmptySession(t *testing.T) {
	session := SessionFuncs[string]{
		Length:   func() int { return 0 },
		IndexFor: func(key string) (int, error) { return 0, muninerrors.ErrUnknownKey },
		KeyAt:    func(idx int) string { return "" },
	}
	m, err := NewSessionMapping[string, int](session, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 || m.NumPresent() != 0 {
		t.Errorf("Len()=%d NumPresent()=%d, want 0", m.Len(), m.NumPresent())
	}
	for range m.All() {
		t.Error("All() yielded from an empty session")
	}
}

// TestSessionMappingTracksSessionLive checks that lookups go through the
// session every time instead of a snapshot taken at construction.
func TestSessionMappingTracksSessionLive(t *testing.T) {
	reversed := false
	session := SessionFuncs[string]{
		Length: func() int { return 2 },
		IndexFor: func(key string) (int, error) {
			idx := map[string]int{"a": 0, "b": 1}[key]
			if reversed {
				idx = 1 - idx
			}
			return idx, nil
		},
		KeyAt: func(idx int) string {
			if reversed {
				idx = 1 - idx
			}
			return []string{"a", "b"}[idx]
		},
	}

	m, err := NewSessionMapping(session, map[string]int{"a": 10, "b": 20}, 0)
	if err != nil {
		t.Fatal(err)
	}
	reversed = true
	if got, _ := m.Get("a"); got != 20 {
		t.Errorf(`Get("a") after remap = %d, want 20`, got)
	}
	if keys := slices.Collect(m.Keys()); !slices.Equal(keys, []string{"b", "a"}) {
		t.Errorf("Keys() after remap = %v, want [b a]", keys)
	}
}

func TestCollectSessionMappingLastValueWins(t *testing.T) {
	session := newListSession(testUniverse...)
	pairs := func(yield func(string, int) bool) {
		_ = yield("year", 1890) && yield("year", 1905)
	}
	m, err := CollectSessionMapping(session, pairs, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get("year"); got != 1905 {
		t.Errorf(`Get("year") = %d, want 1905`, got)
	}
	if m.NumPresent() != 1 {
		t.Errorf("NumPresent() = %d, want 1", m.NumPresent())
	}
}

func TestSessionMappingEarlyStop(t *testing.T) {
	session := newListSession(testUniverse...)
	input := map[string]int{}
	for i, k := range testUniverse {
		input[k] = i + 1
	}
	m, err := NewSessionMapping(session, input, 0)
	if err != nil {
		t.Fatal(err)
	}

	seen := 0
	for range m.All() {
		seen++
		if seen == 3 {
			break
		}
	}
	if seen != 3 {
		t.Errorf("visited %d entries, want 3", seen)
	}
	for range m.Keys() {
		break
	}
	for range m.Values() {
		break
	}
	for range m.PresentValues() {
		break
	}
}

// TestSessionMappingRandomized compares a mapping over a KeySpace with a
// plain map across random sparse inputs.
func TestSessionMappingRandomized(t *testing.T) {
	rng := newTestRNG(t)
	keys := generateKeys(rng, 2000)
	ks, err := NewKeySpace(keys)
	if err != nil {
		t.Fatal(err)
	}

	for trial := 0; trial < 20; trial++ {
		input := make(map[string]uint64)
		for range rng.IntN(300) {
			input[keys[rng.IntN(len(keys))]] = rng.Uint64()
		}

		m, err := NewSessionMapping[string, uint64](ks, input, 0)
		if err != nil {
			t.Fatal(err)
		}
		if got := maps.Collect(m.All()); !maps.Equal(got, input) {
			t.Fatalf("trial %d: All() disagrees with input", trial)
		}
		if m.Len() != len(keys) {
			t.Fatalf("trial %d: Len() = %d", trial, m.Len())
		}
		if m.Session() != Session[string](ks) {
			t.Fatalf("trial %d: Session() is not the construction session", trial)
		}

		// Present keys appear in ascending index order.
		prev := -1
		for k := range m.Keys() {
			idx, err := ks.IndexForKey(k)
			if err != nil {
				t.Fatal(err)
			}
			if idx <= prev {
				t.Fatalf("trial %d: key %q at %d after %d", trial, k, idx, prev)
			}
			prev = idx
		}
	}
}
