package logoverlay

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/regview/internal/log"
)

func withLogger(t *testing.T) {
	t.Helper()
	log.SetDefault(log.New(io.Discard, 100))
	t.Cleanup(func() { log.SetDefault(nil) })
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func shown(t *testing.T) Model {
	t.Helper()
	m := New()
	m.SetSize(120, 40)
	m.Toggle()
	require.True(t, m.Visible())
	return m
}

func TestOverlay_HiddenByDefault(t *testing.T) {
	m := New()
	require.False(t, m.Visible())
	require.Empty(t, m.View())
	require.Equal(t, "background", m.Overlay("background"))
}

func TestOverlay_ShowsRecentEntries(t *testing.T) {
	withLogger(t)
	log.Info(log.CatNav, "navigated", "fragment", "/dns/example.dn42")

	m := shown(t)
	view := ansi.Strip(m.View())
	require.Contains(t, view, "Logs")
	require.Contains(t, view, "navigated fragment=/dns/example.dn42")
}

func TestOverlay_EmptyBuffer(t *testing.T) {
	withLogger(t)
	m := shown(t)
	require.Contains(t, ansi.Strip(m.View()), "No logs to display")
}

func TestOverlay_LevelFilter(t *testing.T) {
	withLogger(t)
	log.Debug(log.CatHTTP, "request sent")
	log.Error(log.CatObject, "fetch failed")

	m := shown(t)
	m, _ = m.Update(key("e"))
	require.Equal(t, log.LevelError, m.MinLevel())

	view := ansi.Strip(m.View())
	require.Contains(t, view, "fetch failed")
	require.NotContains(t, view, "request sent")

	m, _ = m.Update(key("d"))
	require.Contains(t, ansi.Strip(m.View()), "request sent")
}

func TestOverlay_ClearEmptiesBuffer(t *testing.T) {
	withLogger(t)
	log.Warn(log.CatIndex, "slow index")

	m := shown(t)
	m, _ = m.Update(key("c"))
	require.Empty(t, log.GetRecentLogs(10))
	require.Contains(t, ansi.Strip(m.View()), "No logs to display")
}

func TestOverlay_EntryMsgRefreshes(t *testing.T) {
	withLogger(t)
	m := shown(t)
	log.Info(log.CatUI, "late entry")

	m, _ = m.Update(log.EntryMsg{Level: log.LevelInfo, Category: log.CatUI})
	require.Contains(t, ansi.Strip(m.View()), "late entry")
}

func TestOverlay_EscCloses(t *testing.T) {
	withLogger(t)
	m := shown(t)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Visible())
	require.NotNil(t, cmd)
	require.IsType(t, CloseMsg{}, cmd())
}

func TestLevelOf(t *testing.T) {
	level, ok := levelOf("2026-01-01T00:00:00 [WARN] [nav] x")
	require.True(t, ok)
	require.Equal(t, log.LevelWarn, level)

	_, ok = levelOf("no tag here")
	require.False(t, ok)
}
