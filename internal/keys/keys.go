// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the explorer.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Back     key.Binding
	Forward  key.Binding

	// Search box
	FocusSearch key.Binding
	Blur        key.Binding
	ToggleFocus key.Binding

	// Actions
	Enter     key.Binding
	ShowMore  key.Binding
	ShowAll   key.Binding
	CopyTitle key.Binding
	Info      key.Binding

	// General
	Logs key.Binding
	Help key.Binding
	Quit key.Binding
}

// Explorer is the keymap used by the app.
var Explorer = DefaultKeyMap()

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Back: key.NewBinding(
			key.WithKeys("alt+left", "h"),
			key.WithHelp("h/alt+←", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("alt+right", "l"),
			key.WithHelp("l/alt+→", "forward"),
		),

		FocusSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave search"),
		),
		ToggleFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),

		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		ShowMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "show more"),
		),
		ShowAll: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "show all"),
		),
		CopyTitle: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "title to search"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "session info"),
		),

		Logs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "logs"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusSearch, k.Enter, k.Back, k.Forward, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Back, k.Forward}, // Navigation
		{k.FocusSearch, k.Blur, k.ToggleFocus},                  // Search
		{k.Enter, k.ShowMore, k.ShowAll, k.CopyTitle, k.Info},   // Actions
		{k.Logs, k.Help, k.Quit},                                // General
	}
}

