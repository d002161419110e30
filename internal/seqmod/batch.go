package seqmod

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Batch applies rewrite to every descriptor path with at most workers
// files in flight. The first failure cancels the paths not yet
// started. rewrite runs concurrently, so give each path its own
// Service when the verb draws random values.
func Batch(ctx context.Context, paths []string, workers int, rewrite func(path string) error) error {
	if workers < 1 {
		workers = 1
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, path := range paths {
		path := path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return rewrite(path)
		})
	}
	return eg.Wait()
}
