package explorer

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"

	"github.com/zjrosen/regview/internal/registry"
)

// === Mock registry ===

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Index(ctx context.Context) (*registry.Index, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Index), args.Error(1)
}

func (m *mockRegistry) Object(ctx context.Context, t registry.Target) (*registry.ObjectDetail, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.ObjectDetail), args.Error(1)
}

// === Fixtures ===

func testIndex() *registry.Index {
	routes := make([]string, 0, 250)
	for i := range 250 {
		routes = append(routes, fmt.Sprintf("172.20.%d.0_24", i))
	}
	return &registry.Index{
		Info: registry.SessionInfo{Commit: "abc123", Time: "1700000000", ROA: true},
		Categories: []registry.Category{
			{Name: "aut-num", Objects: []string{"AS4242420000", "AS4242420001"}},
			{Name: "mntner", Objects: []string{"FOO-MNT", "BAR-MNT"}},
			{Name: "route", Objects: routes},
			{Name: "dns", Objects: []string{"example.dn42"}},
		},
	}
}

func target(path string) registry.Target {
	t, ok := registry.ParseTarget(path)
	if !ok {
		panic("bad target " + path)
	}
	return t
}

func detailFor(path string, backLinks ...string) *registry.ObjectDetail {
	t := target(path)
	return &registry.ObjectDetail{
		Category: t.Category,
		Filename: t.Name,
		Attributes: []registry.AttributeGroup{
			{Kind: t.Category, Entries: []registry.Entry{{Line: 0, Value: t.Name}}},
			{Kind: "mnt-by", Entries: []registry.Entry{{Line: 1, Value: "FOO-MNT"}}},
		},
		ForwardLinks: []registry.ForwardLink{{Line: 1, Target: "mntner/FOO-MNT"}},
		BackLinks:    backLinks,
	}
}

// newTestNavigator returns a navigator over a mock registry with the index
// already loaded.
func newTestNavigator() (*Navigator, *mockRegistry) {
	reg := &mockRegistry{}
	reg.On("Index", mock.Anything).Return(testIndex(), nil).Maybe()
	nav := NewNavigator(context.Background(), NewIndexCache(reg), NewResolver(reg), Options{})
	drive(nav, nav.Start(""))
	return nav, reg
}

// drive runs cmd and every command it produces, feeding each resulting
// message back through the navigator.
func drive(n *Navigator, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if msg == nil {
			continue
		}
		queue = append(queue, n.Update(msg))
	}
}
