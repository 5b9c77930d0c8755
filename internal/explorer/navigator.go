package explorer

import (
	"context"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
)

// DefaultMinQueryLength is the shortest query that is searched.
const DefaultMinQueryLength = 2

// Options tunes a Navigator. Zero values take the defaults.
type Options struct {
	MinQueryLength int
	BatchSize      int
	SnapshotTTL    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = DefaultMinQueryLength
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.SnapshotTTL <= 0 {
		o.SnapshotTTL = DefaultSnapshotTTL
	}
	return o
}

// IndexLoadedMsg completes an index load started by the navigator.
type IndexLoadedMsg struct {
	Index *registry.Index
	Err   error
}

// ObjectLoadedMsg completes an object fetch. Seq ties it to the navigation
// that started it.
type ObjectLoadedMsg struct {
	Seq       uint64
	Target    registry.Target
	Detail    *registry.ObjectDetail
	Err       error
	SetSearch bool
}

// Navigator owns the view state and reconciles it with the fragment
// history. All methods must be called from the Bubble Tea update loop;
// fetches run as commands and report back through Update.
type Navigator struct {
	ctx       context.Context
	opts      Options
	index     *IndexCache
	resolver  *Resolver
	history   *History
	snapshots *Snapshots

	state ViewState
	err   error

	query   string
	results *Pager

	detail    *registry.ObjectDetail
	displayed registry.Target
	rows      []Row
	backlinks *Pager

	// seq identifies the newest navigation; older completions are dropped.
	seq      uint64
	inflight registry.Target
	// pending runs once the index arrives. A newer action replaces it.
	pending      func() tea.Cmd
	indexLoading bool
	expected     string

	searchText string
	searchRev  int
}

// NewNavigator creates a navigator in the Main state with an empty history.
func NewNavigator(ctx context.Context, index *IndexCache, resolver *Resolver, opts Options) *Navigator {
	opts = opts.withDefaults()
	return &Navigator{
		ctx:       ctx,
		opts:      opts,
		index:     index,
		resolver:  resolver,
		history:   NewHistory(""),
		snapshots: NewSnapshots(opts.SnapshotTTL),
		state:     StateMain,
	}
}

// transition is the only writer of n.state.
func (n *Navigator) transition(to ViewState) {
	if n.state != to {
		log.Debug(log.CatNav, "transition", "from", n.state, "to", to)
	}
	n.state = to
	if to != StateError {
		n.err = nil
	}
}

func (n *Navigator) fail(err error) {
	n.transition(StateError)
	n.err = err
	log.ErrorErr(log.CatNav, "navigation failed", err)
}

// supersede starts a new navigation: in-flight fetches and any action
// waiting for the index become stale.
func (n *Navigator) supersede() {
	n.seq++
	n.pending = nil
	n.inflight = registry.Target{}
}

// setFragment records the value as expected before writing it so the
// resulting change notification is not replayed.
func (n *Navigator) setFragment(fragment string) tea.Cmd {
	n.expected = fragment
	return n.history.Set(fragment)
}

func (n *Navigator) setSearchText(text string) {
	n.searchText = text
	n.searchRev++
}

// Start loads the index and then applies fragment as if it had been
// entered externally. It resets the history to that single entry.
func (n *Navigator) Start(fragment string) tea.Cmd {
	n.history = NewHistory(ParseFragment(fragment).Fragment())
	n.transition(StateWait)
	entry := n.history.Current()
	return n.withIndex(func() tea.Cmd {
		return n.replay(entry)
	})
}

// PerformSearch runs query against the index. Queries shorter than the
// minimum length go straight to Main without touching the index.
func (n *Navigator) PerformSearch(query string) tea.Cmd {
	n.supersede()
	return n.performSearch(query)
}

func (n *Navigator) performSearch(query string) tea.Cmd {
	if utf8.RuneCountInString(query) < n.opts.MinQueryLength {
		n.transition(StateMain)
		return n.setFragment("")
	}
	return n.withIndex(func() tea.Cmd {
		return n.search(query)
	})
}

func (n *Navigator) search(query string) tea.Cmd {
	category, text := ParseQuery(query)
	pager := NewPager(Filter(n.index.Loaded(), category, text), n.opts.BatchSize)
	pager.Pull()
	log.Debug(log.CatNav, "search", "query", query, "results", pager.Len(), "more", pager.Offered())

	if pager.Len() == 1 && !pager.Offered() {
		return n.displayObject(pager.Rows()[0], false)
	}

	n.query = query
	n.results = pager
	n.transition(StateSearch)
	return n.setFragment(SearchFragment(query))
}

// SelectCategory searches every object in category.
func (n *Navigator) SelectCategory(category string) tea.Cmd {
	query := category + "/"
	n.setSearchText(query)
	return n.PerformSearch(query)
}

// DisplayObject navigates to t. Navigating to the displayed object, or to
// the object already being fetched, performs no request.
func (n *Navigator) DisplayObject(t registry.Target) tea.Cmd {
	if n.state == StateWait && n.pending == nil && n.inflight == t {
		return nil
	}
	n.supersede()
	return n.displayObject(t, true)
}

func (n *Navigator) displayObject(t registry.Target, setSearch bool) tea.Cmd {
	if n.detail != nil && t == n.displayed {
		n.transition(StateObject)
		if setSearch {
			n.setSearchText(t.Path())
		}
		return n.setFragment(ObjectFragment(t))
	}

	n.transition(StateWait)
	n.inflight = t
	seq := n.seq
	ctx, resolver := n.ctx, n.resolver
	log.Debug(log.CatNav, "loading object", "target", t.Path(), "seq", seq)
	return func() tea.Msg {
		detail, err := resolver.Resolve(ctx, t)
		return ObjectLoadedMsg{Seq: seq, Target: t, Detail: detail, Err: err, SetSearch: setSearch}
	}
}

// FollowLink navigates along a bound attribute link. Self links and plain
// rows do nothing.
func (n *Navigator) FollowLink(row Row) tea.Cmd {
	if row.Link == nil || row.Link.Self {
		return nil
	}
	return n.DisplayObject(row.Link.Target)
}

// CopyTitle puts the displayed object's path into the search box.
func (n *Navigator) CopyTitle() {
	if n.detail != nil {
		n.setSearchText(n.displayed.Path())
	}
}

// HandleFragment applies a fragment change. Changes the navigator made
// itself are ignored; anything else is replayed through the same paths as
// user actions.
func (n *Navigator) HandleFragment(entry HistoryEntry) tea.Cmd {
	if entry.ID != n.history.Current().ID {
		log.Debug(log.CatNav, "ignoring superseded fragment", "fragment", entry.Fragment)
		return nil
	}
	if entry.Fragment == n.expected {
		log.Debug(log.CatNav, "fragment already applied", "fragment", entry.Fragment)
		return nil
	}
	return n.replay(entry)
}

func (n *Navigator) replay(entry HistoryEntry) tea.Cmd {
	log.Debug(log.CatNav, "replaying fragment", "fragment", entry.Fragment)
	n.supersede()
	n.expected = entry.Fragment

	route := ParseFragment(entry.Fragment)
	switch route.Kind {
	case RouteSearch:
		n.setSearchText(route.Query)
		return n.performSearch(route.Query)

	case RouteObject:
		if detail, ok := n.snapshots.Get(entry.ID); ok {
			return n.showDetail(detail, true)
		}
		t := route.Target
		if n.detail != nil && t == n.displayed {
			return n.displayObject(t, true)
		}
		return n.withIndex(func() tea.Cmd {
			if !n.index.Contains(t) {
				n.fail(&registry.NotFoundError{Target: t})
				return nil
			}
			return n.displayObject(t, true)
		})

	default:
		n.setSearchText("")
		n.transition(StateMain)
		return n.setFragment("")
	}
}

// Back moves one history entry back.
func (n *Navigator) Back() tea.Cmd {
	return n.history.Back()
}

// Forward moves one history entry forward.
func (n *Navigator) Forward() tea.Cmd {
	return n.history.Forward()
}

// ShowMore continues the active pager by one batch. It reports whether
// any rows were added.
func (n *Navigator) ShowMore() bool {
	if p := n.activePager(); p != nil {
		return len(p.ShowMore()) > 0
	}
	return false
}

// ShowAll drains the active pager.
func (n *Navigator) ShowAll() bool {
	if p := n.activePager(); p != nil {
		return len(p.ShowAll()) > 0
	}
	return false
}

func (n *Navigator) activePager() *Pager {
	switch n.state {
	case StateSearch:
		return n.results
	case StateObject:
		return n.backlinks
	default:
		return nil
	}
}

// withIndex runs action now if the index is loaded, otherwise parks it
// until the load completes.
func (n *Navigator) withIndex(action func() tea.Cmd) tea.Cmd {
	if n.index.Loaded() != nil {
		return action()
	}
	n.pending = action
	n.transition(StateWait)
	if n.indexLoading {
		return nil
	}
	n.indexLoading = true
	ctx, index := n.ctx, n.index
	return func() tea.Msg {
		idx, err := index.Ensure(ctx)
		return IndexLoadedMsg{Index: idx, Err: err}
	}
}

// Update applies fetch completions and fragment changes. Other messages
// are ignored.
func (n *Navigator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case IndexLoadedMsg:
		return n.onIndexLoaded(msg)
	case ObjectLoadedMsg:
		return n.onObjectLoaded(msg)
	case FragmentMsg:
		return n.HandleFragment(msg.Entry)
	}
	return nil
}

func (n *Navigator) onIndexLoaded(msg IndexLoadedMsg) tea.Cmd {
	n.indexLoading = false
	action := n.pending
	n.pending = nil

	if msg.Err != nil {
		if action != nil {
			n.fail(msg.Err)
		}
		return nil
	}
	if action == nil {
		return nil
	}
	return action()
}

func (n *Navigator) onObjectLoaded(msg ObjectLoadedMsg) tea.Cmd {
	if msg.Seq != n.seq {
		log.Debug(log.CatNav, "discarding stale object load", "target", msg.Target.Path(), "seq", msg.Seq, "current", n.seq)
		return nil
	}
	n.inflight = registry.Target{}
	if msg.Err != nil {
		n.fail(msg.Err)
		return nil
	}
	return n.showDetail(msg.Detail, msg.SetSearch)
}

func (n *Navigator) showDetail(detail *registry.ObjectDetail, setSearch bool) tea.Cmd {
	n.detail = detail
	n.displayed = detail.Target()
	n.rows = Bind(detail)
	n.backlinks = NewPager(BackLinkCursor(detail.BackLinks), n.opts.BatchSize)
	n.backlinks.Pull()
	if setSearch {
		n.setSearchText(n.displayed.Path())
	}

	cmd := n.setFragment(ObjectFragment(n.displayed))
	n.snapshots.Put(n.history.Current().ID, detail)
	n.transition(StateObject)
	return cmd
}

// State returns the active view.
func (n *Navigator) State() ViewState { return n.state }

// Err is the failure shown in StateError.
func (n *Navigator) Err() error { return n.err }

// Query is the query behind the current result list.
func (n *Navigator) Query() string { return n.query }

// Results is the search result pager, nil before the first search.
func (n *Navigator) Results() *Pager { return n.results }

// Detail is the displayed object, nil until one has loaded.
func (n *Navigator) Detail() *registry.ObjectDetail { return n.detail }

// Rows are the bound attribute rows of the displayed object.
func (n *Navigator) Rows() []Row { return n.rows }

// BackLinks is the back-link pager of the displayed object.
func (n *Navigator) BackLinks() *Pager { return n.backlinks }

// Loading is the object being fetched, if any.
func (n *Navigator) Loading() (registry.Target, bool) {
	return n.inflight, n.state == StateWait && !n.inflight.IsZero()
}

// SearchText is the value the search box should show and a revision that
// changes whenever the navigator wants it updated.
func (n *Navigator) SearchText() (string, int) { return n.searchText, n.searchRev }

// History exposes the fragment history.
func (n *Navigator) History() *History { return n.history }

// Fragment is the current history fragment.
func (n *Navigator) Fragment() string { return n.history.Current().Fragment }

// Counts lists categories for the Main view.
func (n *Navigator) Counts() []CategoryCount { return n.index.Counts() }

// Info returns session metadata once the index is loaded.
func (n *Navigator) Info() (registry.SessionInfo, bool) { return n.index.Info() }
