package explorer

import (
	"cmp"
	"slices"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
)

// Link is a resolved forward reference on an attribute row.
type Link struct {
	Target registry.Target
	// Self marks a reference back to the object being rendered. It is shown
	// but cannot be followed.
	Self bool
}

// Row is one rendered attribute occurrence.
type Row struct {
	Kind  string
	Line  int
	Value string
	Link  *Link
}

// Bind flattens the detail's attributes into rows ordered by source line
// and attaches the first forward link declared on the same line. Rows with
// equal line numbers keep attribute-kind order, then entry order.
func Bind(detail *registry.ObjectDetail) []Row {
	if detail == nil {
		return nil
	}

	var rows []Row
	for _, group := range detail.Attributes {
		for _, e := range group.Entries {
			rows = append(rows, Row{Kind: group.Kind, Line: e.Line, Value: e.Value})
		}
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(a.Line, b.Line)
	})

	self := detail.Target()
	for i := range rows {
		idx := slices.IndexFunc(detail.ForwardLinks, func(l registry.ForwardLink) bool {
			return l.Line == rows[i].Line
		})
		if idx < 0 {
			continue
		}
		path := detail.ForwardLinks[idx].Target
		target, ok := registry.ParseTarget(path)
		if !ok {
			log.Warn(log.CatObject, "unparseable forward link", "object", self.Path(), "line", rows[i].Line, "target", path)
			continue
		}
		rows[i].Link = &Link{Target: target, Self: target == self}
	}
	return rows
}
