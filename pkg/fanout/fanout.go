// Package fanout runs per-key work concurrently while keeping each key's
// items in submission order.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const DefaultLimit = 8

// ByKey groups items by key and runs fn for every item. Groups run
// concurrently, bounded by limit; items of the same group run sequentially in
// the order they appear. The first error cancels the ctx handed to the
// remaining calls and is returned.
func ByKey[T any](ctx context.Context, items []T, key func(T) string, limit int, fn func(ctx context.Context, index int, item T) error) error {
	if len(items) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	order := []string{}
	groups := map[string][]int{}
	for i, item := range items {
		k := key(item)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, k := range order {
		indexes := groups[k]
		g.Go(func() error {
			for _, idx := range indexes {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(gctx, idx, items[idx]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
