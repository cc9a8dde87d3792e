package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachDocument calls fn for every path with at most jobs calls running at
// once and returns the results in input order. A failing document does not
// stop the others.
func forEachDocument[T any](ctx context.Context, jobs int, paths []string, fn func(ctx context.Context, path string) T) []T {
	results := make([]T, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = fn(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
