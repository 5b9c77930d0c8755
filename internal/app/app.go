// Package app contains the root application model.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/regview/internal/config"
	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/keys"
	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/ui/infomodal"
	"github.com/zjrosen/regview/internal/ui/logoverlay"
	"github.com/zjrosen/regview/internal/ui/render"
	"github.com/zjrosen/regview/internal/ui/styles"
)

type focus int

const (
	focusInput focus = iota
	focusList
)

// search box, status line and the two border rows around the results
const chromeHeight = 4

// debounceMsg fires when typing pauses. Only the latest version searches.
type debounceMsg struct {
	version int
	query   string
}

// Options configures the root model.
type Options struct {
	Config   config.Config
	Server   string // shown in the status line and info modal
	Fragment string // initial fragment, as if entered in the address bar
	Debug    bool   // enables the log overlay
}

// ConfigReloadedMsg carries a config file edited while the explorer runs.
type ConfigReloadedMsg struct {
	Config config.Config
}

// Model is the root application state.
type Model struct {
	nav  *explorer.Navigator
	opts Options

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model

	info         infomodal.Model
	logOverlay   logoverlay.Model
	logListener  *log.Listener
	cancelListen context.CancelFunc

	focus    focus
	selected int
	page     render.Page
	viewKey  string
	textRev  int
	debounce int

	width  int
	height int
}

// New creates the root model around nav.
func New(nav *explorer.Navigator, opts Options) Model {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search objects, or category/ to list one category"
	input.PromptStyle = lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.SpinnerColor)),
	)

	m := Model{
		nav:        nav,
		opts:       opts,
		input:      input,
		spinner:    spin,
		viewport:   viewport.New(0, 0),
		help:       help.New(),
		info:       infomodal.New(opts.Config.UI.MarkdownStyle),
		logOverlay: logoverlay.New(),
	}
	if opts.Debug {
		ctx, cancel := context.WithCancel(context.Background())
		m.logListener = log.NewListener(ctx)
		m.cancelListen = cancel
	}
	m.input.Focus()
	return m
}

// Init starts the navigator and the background tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.nav.Start(m.opts.Fragment),
		m.spinner.Tick,
		textinput.Blink,
		m.logListener.Listen(),
	)
}

// Close stops the log listener.
func (m Model) Close() {
	if m.cancelListen != nil {
		m.cancelListen()
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		m.info.SetSize(msg.Width, msg.Height)
		m.logOverlay.SetSize(msg.Width, msg.Height)
		m.resizeViewport()
		return m.synced(nil)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.nav.State() == explorer.StateWait {
			return m.synced(cmd)
		}
		return m, cmd

	case debounceMsg:
		if msg.version != m.debounce {
			return m, nil
		}
		return m.synced(m.nav.PerformSearch(msg.query))

	case explorer.IndexLoadedMsg, explorer.ObjectLoadedMsg, explorer.FragmentMsg:
		return m.synced(m.nav.Update(msg))

	case ConfigReloadedMsg:
		// only ui and debounce apply live, the rest is read at startup
		m.opts.Config.Search.Debounce = msg.Config.Search.Debounce
		m.opts.Config.UI = msg.Config.UI
		m.info.SetStyle(msg.Config.UI.MarkdownStyle)
		log.Info(log.CatConfig, "config reloaded", "show_counts", msg.Config.UI.ShowCounts, "debounce", msg.Config.Search.Debounce)
		return m.synced(nil)

	case log.EntryMsg:
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, tea.Batch(cmd, m.logListener.Listen())

	case logoverlay.CloseMsg:
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// cursor blink and anything else the input wants
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := keys.Explorer

	if m.opts.Debug && key.Matches(msg, k.Logs) {
		m.logOverlay.Toggle()
		return m, nil
	}
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}
	if m.info.Visible() {
		var cmd tea.Cmd
		m.info, cmd = m.info.Update(msg)
		return m, cmd
	}
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// works from either focus
	switch {
	case msg.Alt && key.Matches(msg, k.Back):
		return m.synced(m.nav.Back())
	case msg.Alt && key.Matches(msg, k.Forward):
		return m.synced(m.nav.Forward())
	case key.Matches(msg, k.ToggleFocus):
		cmd := m.toggleFocus()
		return m.synced(cmd)
	}

	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.FocusSearch):
		cmd := m.toggleFocus()
		return m.synced(cmd)
	case key.Matches(msg, k.Up):
		return m.moveSelection(-1)
	case key.Matches(msg, k.Down):
		return m.moveSelection(1)
	case key.Matches(msg, k.PageUp):
		return m.moveSelection(-max(m.viewport.Height, 1))
	case key.Matches(msg, k.PageDown):
		return m.moveSelection(max(m.viewport.Height, 1))
	case key.Matches(msg, k.Enter):
		return m.activate(m.selected)
	case key.Matches(msg, k.Back):
		return m.synced(m.nav.Back())
	case key.Matches(msg, k.Forward):
		return m.synced(m.nav.Forward())
	case key.Matches(msg, k.ShowMore):
		m.nav.ShowMore()
		return m.synced(nil)
	case key.Matches(msg, k.ShowAll):
		m.nav.ShowAll()
		return m.synced(nil)
	case key.Matches(msg, k.CopyTitle):
		m.nav.CopyTitle()
		return m.synced(nil)
	case key.Matches(msg, k.Info):
		return m.showInfo()
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeViewport()
		return m.synced(nil)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := keys.Explorer
	switch {
	case key.Matches(msg, k.Blur):
		cmd := m.toggleFocus()
		return m.synced(cmd)
	case msg.Type == tea.KeyDown:
		cmd := m.toggleFocus()
		return m.synced(cmd)
	case key.Matches(msg, k.Enter):
		// search now instead of waiting out the debounce
		m.debounce++
		m.focus = focusList
		m.input.Blur()
		return m.synced(m.nav.PerformSearch(m.input.Value()))
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.debounce++
	query := m.input.Value()
	if m.opts.Config.Search.Debounce <= 0 {
		return m.synced(tea.Batch(cmd, m.nav.PerformSearch(query)))
	}
	version := m.debounce
	tick := tea.Tick(m.opts.Config.Search.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{version: version, query: query}
	})
	return m, tea.Batch(cmd, tick)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.logOverlay.Visible() || m.info.Visible() {
		return m, nil
	}
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if !m.opts.Config.UI.Mouse || msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for i := range m.page.Items {
		if z := zone.Get(render.ZoneID(i)); z != nil && z.InBounds(msg) {
			m.selected = i
			return m.activate(i)
		}
	}
	return m, nil
}

// activate performs the action behind item i.
func (m Model) activate(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.page.Items) {
		return m, nil
	}
	item := m.page.Items[i]
	log.Debug(log.CatUI, "activate", "kind", int(item.Kind), "target", item.Target.Path())

	switch item.Kind {
	case render.ItemCategory:
		return m.synced(m.nav.SelectCategory(item.Category))
	case render.ItemResult, render.ItemBackLink:
		return m.synced(m.nav.DisplayObject(item.Target))
	case render.ItemLink:
		return m.synced(m.nav.FollowLink(item.Row))
	case render.ItemTitle:
		m.nav.CopyTitle()
	case render.ItemShowMore:
		m.nav.ShowMore()
	case render.ItemShowAll:
		m.nav.ShowAll()
	}
	return m.synced(nil)
}

func (m Model) showInfo() (tea.Model, tea.Cmd) {
	info, ok := m.nav.Info()
	if !ok {
		log.Debug(log.CatUI, "session info requested before the index loaded")
		return m, nil
	}
	m.info.Show(info, m.opts.Server)
	return m, nil
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return nil
	}
	m.focus = focusInput
	return m.input.Focus()
}

func (m Model) moveSelection(delta int) (tea.Model, tea.Cmd) {
	if len(m.page.Items) == 0 {
		return m, nil
	}
	m.selected = min(max(m.selected+delta, 0), len(m.page.Items)-1)
	return m.synced(nil)
}

// synced re-renders from navigator state after anything that may have
// changed it, and pulls the navigator's search text into the input.
func (m Model) synced(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if text, rev := m.nav.SearchText(); rev != m.textRev {
		m.textRev = rev
		m.input.SetValue(text)
		m.input.CursorEnd()
		// a pending keystroke search must not override the navigator
		m.debounce++
	}

	viewKey := m.nav.State().String() + "|" + m.nav.Fragment()
	if viewKey != m.viewKey {
		m.viewKey = viewKey
		m.selected = 0
		m.viewport.GotoTop()
	}

	m.page = m.render()
	if n := len(m.page.Items); m.selected >= n {
		m.selected = max(n-1, 0)
		m.page = m.render()
	}
	m.viewport.SetContent(m.page.Content)
	m.scrollToSelection()
	return m, cmd
}

func (m Model) render() render.Page {
	in := render.Input{
		State:      m.nav.State(),
		Counts:     m.nav.Counts(),
		ShowCounts: m.opts.Config.UI.ShowCounts,
		Query:      m.nav.Query(),
		Results:    m.nav.Results(),
		Detail:     m.nav.Detail(),
		Rows:       m.nav.Rows(),
		BackLinks:  m.nav.BackLinks(),
		Err:        m.nav.Err(),
		Spinner:    m.spinner.View(),
		Selected:   m.selected,
		Width:      max(m.viewport.Width, 20),
	}
	if t, ok := m.nav.Loading(); ok {
		in.Loading = t
	}
	if m.focus == focusInput {
		in.Selected = -1
	}
	return render.Render(in)
}

func (m *Model) scrollToSelection() {
	if m.selected >= len(m.page.Items) || m.viewport.Height <= 0 {
		return
	}
	line := m.page.Items[m.selected].Line
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m *Model) resizeViewport() {
	helpHeight := lipgloss.Height(m.help.View(keys.Explorer))
	// the titled border takes two rows and two columns
	m.viewport.Width = max(m.width-2, 0)
	m.viewport.Height = max(m.height-chromeHeight-helpHeight, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	title := "regview"
	if f := m.nav.Fragment(); f != "" {
		title += " #" + f
	}
	body := styles.RenderWithTitleBorder(
		m.viewport.View(), title,
		m.width, m.viewport.Height+2,
		m.focus == focusList,
	)

	screen := strings.Join([]string{
		m.input.View(),
		m.statusLine(),
		body,
		m.help.View(keys.Explorer),
	}, "\n")

	screen = m.info.Overlay(screen)
	screen = m.logOverlay.Overlay(screen)
	return zone.Scan(screen)
}

func (m Model) statusLine() string {
	h := m.nav.History()
	nav := ""
	if h.CanBack() {
		nav += "◀ "
	}
	if h.CanForward() {
		nav += "▶ "
	}
	left := nav + m.nav.State().String()
	right := m.opts.Server
	gap := max(m.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + styles.TruncateString(right, max(m.width/2, 0)))
}
