// Package infomodal shows the session metadata served with the index.
package infomodal

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
	"github.com/zjrosen/regview/internal/ui/overlay"
	"github.com/zjrosen/regview/internal/ui/styles"
)

const maxWidth = 72

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Markdown describes the session as a markdown document.
func Markdown(info registry.SessionInfo, server string) string {
	generated := info.Time
	if ts, ok := info.Generated(); ok {
		generated = ts.Format(time.RFC3339)
	}
	roa := "not available"
	if info.ROA {
		roa = "available (`regview roa v4|v6|json`)"
	}

	var b strings.Builder
	b.WriteString("# Registry session\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Commit | `%s` |\n", info.Commit)
	fmt.Fprintf(&b, "| Generated | %s |\n", generated)
	fmt.Fprintf(&b, "| ROA data | %s |\n", roa)
	if server != "" {
		fmt.Fprintf(&b, "| Server | %s |\n", server)
	}
	return b.String()
}

// Render runs the markdown through glamour at the given wrap width. style
// is "dark" or "light"; empty means dark so the terminal is never queried
// for its background.
func Render(markdown string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

// Model is the modal state.
type Model struct {
	visible bool
	style   string
	width   int
	height  int
	body    string
}

func New(style string) Model {
	return Model{style: style}
}

// Show renders info and opens the modal. When glamour fails the raw
// markdown is shown instead.
func (m *Model) Show(info registry.SessionInfo, server string) {
	md := Markdown(info, server)
	body, err := Render(md, m.contentWidth(), m.style)
	if err != nil {
		log.ErrorErr(log.CatUI, "Rendering session info failed", err)
		body = md
	}
	m.body = strings.TrimRight(body, "\n")
	m.visible = true
}

// SetStyle switches the glamour style used by the next Show.
func (m *Model) SetStyle(style string) {
	m.style = style
}

func (m *Model) Hide() {
	m.visible = false
}

func (m Model) Visible() bool {
	return m.visible
}

// SetSize updates the screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update closes the modal on esc, enter, q or i.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && m.visible {
		switch k.String() {
		case "esc", "enter", "q", "i":
			m.visible = false
		case "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	if !m.visible {
		return ""
	}
	hint := styles.MutedStyle.Render("esc to close")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(m.body + "\n\n" + hint)
}

// Overlay draws the modal centered over bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height}, m.View(), bg)
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return maxWidth
	}
	return max(min(m.width-8, maxWidth), 20)
}
