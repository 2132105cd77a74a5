package munin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchOption is a functional option for configuring BuildMappings.
type BatchOption[V any] func(*batchConfig[V])

type batchConfig[V any] struct {
	workers     int
	mappingOpts []MappingOption[V]
}

func defaultBatchConfig[V any]() *batchConfig[V] {
	return &batchConfig[V]{
		workers: 1, // Default to single-threaded; use WithWorkers(n) to parallelize
	}
}

// WithWorkers sets the number of parallel workers. Values below 1 mean 1.
func WithWorkers[V any](n int) BatchOption[V] {
	return func(c *batchConfig[V]) {
		c.workers = n
	}
}

// WithMappingOptions applies opts to every mapping in the batch.
func WithMappingOptions[V any](opts ...MappingOption[V]) BatchOption[V] {
	return func(c *batchConfig[V]) {
		c.mappingOpts = append(c.mappingOpts, opts...)
	}
}

// BuildMappings builds one SessionMapping per input, all sharing session
// and defaultValue. The result has the same order as inputs.
//
// With WithWorkers(n), up to n mappings are built concurrently, so the
// session's reads must be safe for concurrent use. The first failure stops
// the remaining work and is returned wrapped with the failing input's
// position. Context cancellation returns the context's error.
func BuildMappings[K comparable, V any](ctx context.Context, session Session[K], inputs []map[K]V, defaultValue V, opts ...BatchOption[V]) ([]*SessionMapping[K, V], error) {
	cfg := defaultBatchConfig[V]()
	for _, opt := range opts {
		opt(cfg)
	}
	workers := max(cfg.workers, 1)

	out := make([]*SessionMapping[K, V], len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, input := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := NewSessionMapping(session, input, defaultValue, cfg.mappingOpts...)
			if err != nil {
				return fmt.Errorf("build mapping %d: %w", i, err)
			}
			// Each goroutine owns a distinct element of out.
			out[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
