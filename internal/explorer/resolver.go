package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
)

// ObjectFetcher loads a single object detail. *registry.Client satisfies it.
type ObjectFetcher interface {
	Object(ctx context.Context, t registry.Target) (*registry.ObjectDetail, error)
}

// Resolver fetches object details and normalizes their failures.
type Resolver struct {
	fetcher ObjectFetcher
}

// NewResolver returns a resolver backed by fetcher.
func NewResolver(fetcher ObjectFetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve performs one fetch for t. The returned detail carries the
// server's canonical identity, which may differ in casing from t. Errors
// match registry.ErrObjectNotFound or registry.ErrObjectFetch.
func (r *Resolver) Resolve(ctx context.Context, t registry.Target) (*registry.ObjectDetail, error) {
	start := time.Now()
	detail, err := r.fetcher.Object(ctx, t)
	if err != nil {
		if !errors.Is(err, registry.ErrObjectNotFound) && !errors.Is(err, registry.ErrObjectFetch) {
			err = fmt.Errorf("%w: %s: %w", registry.ErrObjectFetch, t.Path(), err)
		}
		log.ErrorErr(log.CatObject, "resolve failed", err, "target", t.Path())
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: %s: empty response", registry.ErrObjectFetch, t.Path())
	}

	if canonical := detail.Target(); canonical != t {
		log.Debug(log.CatObject, "canonical identity differs", "requested", t.Path(), "canonical", canonical.Path())
	}
	log.Debug(log.CatObject, "resolved", "target", t.Path(), "attributes", len(detail.Attributes), "elapsed", time.Since(start))
	return detail, nil
}
