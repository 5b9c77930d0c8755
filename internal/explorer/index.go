// Package explorer is the navigation and search engine behind regview: the
// session index cache, lazy search cursors, resumable pagination, link
// binding, fragment history and the view state machine that ties them to
// the Bubble Tea update loop.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
)

// IndexFetcher loads the name index. *registry.Client satisfies it.
type IndexFetcher interface {
	Index(ctx context.Context) (*registry.Index, error)
}

// CategoryCount is one line of the Main view.
type CategoryCount struct {
	Name  string
	Count int
}

// IndexCache memoizes the session index. It is written once, on the first
// successful load, and never invalidated. Concurrent first loads share one
// request.
type IndexCache struct {
	fetcher IndexFetcher
	group   singleflight.Group

	mu      sync.RWMutex
	index   *registry.Index
	members map[registry.Target]struct{}
}

func NewIndexCache(fetcher IndexFetcher) *IndexCache {
	return &IndexCache{fetcher: fetcher}
}

// Ensure returns the loaded index, fetching it if this is the first call.
// A failed fetch leaves the cache empty so the next call tries again.
func (c *IndexCache) Ensure(ctx context.Context) (*registry.Index, error) {
	if idx := c.Loaded(); idx != nil {
		return idx, nil
	}

	v, err, shared := c.group.Do("index", func() (any, error) {
		if idx := c.Loaded(); idx != nil {
			return idx, nil
		}
		idx, err := c.fetcher.Index(ctx)
		if err != nil {
			if !errors.Is(err, registry.ErrIndexFetch) {
				err = fmt.Errorf("%w: %w", registry.ErrIndexFetch, err)
			}
			log.ErrorErr(log.CatIndex, "index load failed", err)
			return nil, err
		}
		c.store(idx)
		log.Info(log.CatIndex, "index cached", "categories", len(idx.Categories), "objects", idx.Count())
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug(log.CatIndex, "joined in-flight index load")
	}
	return v.(*registry.Index), nil
}

func (c *IndexCache) store(idx *registry.Index) {
	members := make(map[registry.Target]struct{}, idx.Count())
	for _, cat := range idx.Categories {
		for _, name := range cat.Objects {
			members[registry.Target{Category: cat.Name, Name: name}] = struct{}{}
		}
	}

	c.mu.Lock()
	c.index = idx
	c.members = members
	c.mu.Unlock()
}

// Loaded returns the cached index or nil. It never fetches.
func (c *IndexCache) Loaded() *registry.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Contains reports whether t is present in the loaded index.
func (c *IndexCache) Contains(t registry.Target) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.members[t]
	return ok
}

// Counts lists categories with their object counts in index order.
func (c *IndexCache) Counts() []CategoryCount {
	idx := c.Loaded()
	if idx == nil {
		return nil
	}
	counts := make([]CategoryCount, 0, len(idx.Categories))
	for _, cat := range idx.Categories {
		counts = append(counts, CategoryCount{Name: cat.Name, Count: len(cat.Objects)})
	}
	return counts
}

// Info returns the session info once the index is loaded.
func (c *IndexCache) Info() (registry.SessionInfo, bool) {
	idx := c.Loaded()
	if idx == nil {
		return registry.SessionInfo{}, false
	}
	return idx.Info, true
}
