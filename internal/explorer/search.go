package explorer

import (
	"strings"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
)

// Cursor is a one-shot, forward-only sequence of targets.
type Cursor interface {
	Next() (registry.Target, bool)
}

// ParseQuery splits a raw query into an optional category filter and the
// search text. Only the first slash separates them.
func ParseQuery(raw string) (category, text string) {
	if c, t, ok := strings.Cut(raw, "/"); ok {
		return c, t
	}
	return "", raw
}

type filterCursor struct {
	categories []registry.Category
	category   string
	needle     string
	ci, ni     int
}

// Filter returns a lazy cursor over the names in idx whose upper-cased form
// contains the upper-cased query. An empty category matches every category.
// Results follow index category order, then stored name order.
func Filter(idx *registry.Index, category, query string) Cursor {
	c := &filterCursor{category: category, needle: strings.ToUpper(query)}
	if idx != nil {
		c.categories = idx.Categories
	}
	return c
}

func (c *filterCursor) Next() (registry.Target, bool) {
	for c.ci < len(c.categories) {
		cat := c.categories[c.ci]
		if c.category != "" && cat.Name != c.category {
			c.ci++
			c.ni = 0
			continue
		}
		for c.ni < len(cat.Objects) {
			name := cat.Objects[c.ni]
			c.ni++
			if strings.Contains(strings.ToUpper(name), c.needle) {
				return registry.Target{Category: cat.Name, Name: name}, true
			}
		}
		c.ci++
		c.ni = 0
	}
	return registry.Target{}, false
}

type pathCursor struct {
	paths []string
	i     int
}

// BackLinkCursor yields the back-link paths as targets in server order.
// Paths that do not decode as "category/name" are skipped.
func BackLinkCursor(paths []string) Cursor {
	return &pathCursor{paths: paths}
}

func (c *pathCursor) Next() (registry.Target, bool) {
	for c.i < len(c.paths) {
		p := c.paths[c.i]
		c.i++
		if t, ok := registry.ParseTarget(p); ok {
			return t, true
		}
		log.Warn(log.CatObject, "skipping malformed back link", "path", p)
	}
	return registry.Target{}, false
}
