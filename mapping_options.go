package munin

// MappingOption is a functional option for configuring a SessionMapping.
type MappingOption[V any] func(*mappingConfig[V])

type mappingConfig[V any] struct {
	// skip reports values that count as absent even when written.
	// nil means every written slot is present.
	skip func(V) bool
}

func defaultMappingConfig[V any]() *mappingConfig[V] {
	return &mappingConfig[V]{}
}

// ExcludeZero treats written zero values ("", 0, false, nil) as absent for
// iteration, Keys, Contains and NumPresent. Get still returns them.
func ExcludeZero[V comparable]() MappingOption[V] {
	return func(c *mappingConfig[V]) {
		var zero V
		c.skip = func(v V) bool { return v == zero }
	}
}

// WithPresence installs a predicate deciding which written values are
// present. Values for which present returns false are treated like unset
// slots by iteration, Keys, Contains and NumPresent.
func WithPresence[V any](present func(V) bool) MappingOption[V] {
	return func(c *mappingConfig[V]) {
		if present == nil {
			c.skip = nil
			return
		}
		c.skip = func(v V) bool { return !present(v) }
	}
}
