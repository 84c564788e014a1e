// Package clicks records visitor clicks and serves click counts to the
// owner dashboard.
package clicks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

// CountStore returns click counts for many links at once. Links without
// clicks may be absent from the result. *db.DB implements it.
type CountStore interface {
	CountClicksByLinks(ctx context.Context, linkIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type loaderKey struct{}

// Loader is a per-request batching loader of click counts.
type Loader = dataloader.Loader[uuid.UUID, int64]

// NewLoader creates a Loader backed by store. Counts requested within a few
// milliseconds of each other are fetched with one query.
func NewLoader(store CountStore) *Loader {
	return dataloader.NewBatchedLoader(
		newCountBatchFn(store),
		dataloader.WithWait[uuid.UUID, int64](wait),
		dataloader.WithBatchCapacity[uuid.UUID, int64](maxBatch),
	)
}

func newCountBatchFn(store CountStore) dataloader.BatchFunc[uuid.UUID, int64] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[int64] {
		results := make([]*dataloader.Result[int64], len(keys))

		counts, err := store.CountClicksByLinks(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[int64]{Error: err}
			}
			return results
		}

		for i, id := range keys {
			results[i] = &dataloader.Result[int64]{Data: counts[id]}
		}
		return results
	}
}

// WithLoader returns a context carrying a fresh Loader for one request.
func WithLoader(ctx context.Context, store CountStore) context.Context {
	return context.WithValue(ctx, loaderKey{}, NewLoader(store))
}

// LoaderFromContext returns the request's Loader, or nil if none was installed.
func LoaderFromContext(ctx context.Context) *Loader {
	l, _ := ctx.Value(loaderKey{}).(*Loader)
	return l
}

// Counter answers click count lookups, batching them through the request's
// Loader when one is present in the context.
type Counter struct {
	store CountStore
}

// NewCounter creates a Counter.
func NewCounter(store CountStore) *Counter {
	return &Counter{store: store}
}

// CountClicksForLink returns the number of clicks recorded for a link.
func (c *Counter) CountClicksForLink(ctx context.Context, linkID uuid.UUID) (int64, error) {
	loader := LoaderFromContext(ctx)
	if loader == nil {
		counts, err := c.store.CountClicksByLinks(ctx, []uuid.UUID{linkID})
		if err != nil {
			return 0, err
		}
		return counts[linkID], nil
	}
	return loader.Load(ctx, linkID)()
}
