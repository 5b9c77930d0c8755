package explorer

import (
	"strings"

	"github.com/zjrosen/regview/internal/registry"
)

// RouteKind is the view a fragment decodes to.
type RouteKind int

const (
	RouteMain RouteKind = iota
	RouteSearch
	RouteObject
)

// Route is a decoded fragment.
type Route struct {
	Kind   RouteKind
	Query  string
	Target registry.Target
}

// ParseFragment decodes "" (Main), "?query" (Search) and "/category/name"
// (Object). A leading '#' is ignored; anything else is Main.
func ParseFragment(fragment string) Route {
	fragment = strings.TrimPrefix(fragment, "#")
	switch {
	case strings.HasPrefix(fragment, "?"):
		return Route{Kind: RouteSearch, Query: fragment[1:]}
	case strings.HasPrefix(fragment, "/"):
		if t, ok := registry.ParseTarget(fragment[1:]); ok {
			return Route{Kind: RouteObject, Target: t}
		}
	}
	return Route{Kind: RouteMain}
}

// Fragment encodes the route. It is the inverse of ParseFragment for
// every route ParseFragment can return.
func (r Route) Fragment() string {
	switch r.Kind {
	case RouteSearch:
		return SearchFragment(r.Query)
	case RouteObject:
		return ObjectFragment(r.Target)
	default:
		return ""
	}
}

// SearchFragment encodes a search view for query.
func SearchFragment(query string) string {
	return "?" + query
}

// ObjectFragment encodes the object view of t.
func ObjectFragment(t registry.Target) string {
	return "/" + t.Path()
}
