// Package render projects navigator state onto text. It is pure: the same
// input always produces the same page, and nothing here touches the
// navigator.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/registry"
	"github.com/zjrosen/regview/internal/ui/styles"
)

const (
	zonePrefix = "regview-item:"

	maxKindWidth  = 24
	minValueWidth = 16

	NoResults    = "No results"
	NoReferences = "No references found"
	ShowMoreText = "Show more.."
	ShowAllText  = "Show all.."
)

// ZoneID is the click zone for the i-th item of a page.
func ZoneID(i int) string {
	return fmt.Sprintf("%s%d", zonePrefix, i)
}

// ItemKind says what activating an item does.
type ItemKind int

const (
	ItemCategory ItemKind = iota // search "category/"
	ItemResult                   // open a search result
	ItemTitle                    // copy the object path into the search box
	ItemLink                     // follow a forward link
	ItemBackLink                 // open a referencing object
	ItemShowMore
	ItemShowAll
)

// Item is one selectable element of a page.
type Item struct {
	Kind     ItemKind
	Category string
	Target   registry.Target
	Row      explorer.Row
	Line     int // content line the item starts on
}

// Input is everything a page is drawn from.
type Input struct {
	State      explorer.ViewState
	Counts     []explorer.CategoryCount
	ShowCounts bool
	Query      string
	Results    *explorer.Pager
	Detail     *registry.ObjectDetail
	Rows       []explorer.Row
	BackLinks  *explorer.Pager
	Err        error
	Loading    registry.Target
	Spinner    string
	Selected   int
	Width      int
}

// Page is a rendered view plus its selectable items in display order.
type Page struct {
	Content string
	Items   []Item
}

type builder struct {
	in    Input
	lines []string
	items []Item
}

// Render draws the page for the current state.
func Render(in Input) Page {
	b := &builder{in: in}
	switch in.State {
	case explorer.StateMain:
		b.main()
	case explorer.StateSearch:
		b.search()
	case explorer.StateObject:
		b.object()
	case explorer.StateWait:
		b.wait()
	case explorer.StateError:
		b.failure()
	}
	return Page{Content: strings.Join(b.lines, "\n"), Items: b.items}
}

func (b *builder) text(s string) {
	b.lines = append(b.lines, strings.Split(s, "\n")...)
}

func (b *builder) blank() {
	b.lines = append(b.lines, "")
}

// item appends a selectable line. Continuation lines are indented to the
// item's text.
func (b *builder) item(it Item, s string) {
	idx := len(b.items)
	it.Line = len(b.lines)
	b.items = append(b.items, it)

	prefix := "  "
	if idx == b.in.Selected {
		prefix = styles.SelectionIndicatorStyle.Render(">") + " "
	}
	parts := strings.Split(s, "\n")
	b.lines = append(b.lines, zone.Mark(ZoneID(idx), prefix+parts[0]))
	for _, p := range parts[1:] {
		b.lines = append(b.lines, "  "+p)
	}
}

func (b *builder) heading(s string) {
	b.text(styles.TitleStyle.Render(s))
}

func (b *builder) empty(s string) {
	b.text("  " + styles.EmptyStyle.Render(s))
}

func (b *builder) main() {
	b.heading("Categories")
	if len(b.in.Counts) == 0 {
		b.empty("No categories")
		return
	}
	width := 0
	for _, c := range b.in.Counts {
		width = max(width, runewidth.StringWidth(c.Name))
	}
	for _, c := range b.in.Counts {
		line := styles.LinkStyle.Render(c.Name)
		if b.in.ShowCounts {
			line += strings.Repeat(" ", width-runewidth.StringWidth(c.Name)) +
				styles.MutedStyle.Render(fmt.Sprintf(" - %d", c.Count))
		}
		b.item(Item{Kind: ItemCategory, Category: c.Name}, line)
	}
}

func (b *builder) search() {
	p := b.in.Results
	n := 0
	if p != nil {
		n = p.Len()
	}
	count := fmt.Sprintf("%d", n)
	if p != nil && p.Offered() {
		count += "+"
	}
	b.heading(fmt.Sprintf("Results for %q", b.in.Query))
	b.text(styles.MutedStyle.Render(count + " shown"))
	b.blank()
	b.targets(p, ItemResult, NoResults)
}

// targets lists a pager's rows with category badges and its continuation
// affordances.
func (b *builder) targets(p *explorer.Pager, kind ItemKind, emptyText string) {
	if p == nil || p.Len() == 0 {
		b.empty(emptyText)
		return
	}
	for _, t := range p.Rows() {
		b.item(Item{Kind: kind, Target: t}, styles.LinkStyle.Render(t.Name)+" "+badge(t.Category))
	}
	if p.Offered() {
		b.item(Item{Kind: ItemShowMore}, styles.ActionStyle.Render(ShowMoreText))
		b.item(Item{Kind: ItemShowAll}, styles.ActionStyle.Render(ShowAllText))
	}
}

func badge(category string) string {
	return styles.BadgeStyle.Render("[" + category + "]")
}

func (b *builder) object() {
	d := b.in.Detail
	if d == nil {
		b.empty("Nothing to show")
		return
	}
	target := d.Target()
	b.item(Item{Kind: ItemTitle, Target: target}, styles.TitleStyle.Render(target.Path()))
	b.blank()

	kindWidth := 0
	for _, r := range b.in.Rows {
		kindWidth = max(kindWidth, runewidth.StringWidth(r.Kind))
	}
	kindWidth = min(kindWidth, maxKindWidth)
	valueWidth := max(b.in.Width-2-kindWidth-2, minValueWidth)

	for _, r := range b.in.Rows {
		b.row(r, kindWidth, valueWidth)
	}

	b.blank()
	b.heading("Referenced by")
	b.targets(b.in.BackLinks, ItemBackLink, NoReferences)
}

func (b *builder) row(r explorer.Row, kindWidth, valueWidth int) {
	kind := styles.KindStyle.Render(styles.PadRight(styles.TruncateString(r.Kind, kindWidth), kindWidth))
	indent := strings.Repeat(" ", kindWidth+2)

	valueStyle := lipgloss.NewStyle()
	suffix := ""
	if r.Link != nil {
		valueStyle = styles.LinkStyle
		if r.Link.Self {
			valueStyle = styles.SelfLinkStyle
		}
		suffix = " " + badge(r.Link.Target.Category)
	}

	wrapped := strings.Split(wrap.String(wordwrap.String(r.Value, valueWidth), valueWidth), "\n")
	for i, w := range wrapped {
		wrapped[i] = valueStyle.Render(w)
	}
	wrapped[len(wrapped)-1] += suffix

	lines := make([]string, len(wrapped))
	lines[0] = kind + "  " + wrapped[0]
	for i := 1; i < len(wrapped); i++ {
		lines[i] = indent + wrapped[i]
	}
	block := strings.Join(lines, "\n")

	if r.Link != nil && !r.Link.Self {
		b.item(Item{Kind: ItemLink, Target: r.Link.Target, Row: r}, block)
		return
	}
	for _, l := range lines {
		b.text("  " + l)
	}
}

func (b *builder) wait() {
	what := "index"
	if !b.in.Loading.IsZero() {
		what = b.in.Loading.Path()
	}
	b.text(b.in.Spinner + " Loading " + what + "...")
}

func (b *builder) failure() {
	if b.in.Err == nil {
		return
	}
	b.text(styles.ErrorStyle.Render(explorer.ErrorMessage(b.in.Err)))
}
