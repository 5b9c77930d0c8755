package explorer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// HistoryEntry is one fragment in the session history. IDs are unique per
// entry, so two visits to the same fragment are distinct entries.
type HistoryEntry struct {
	ID       uuid.UUID
	Fragment string
}

// FragmentMsg reports that the current fragment changed.
type FragmentMsg struct {
	Entry HistoryEntry
}

// History is a browser-style fragment history with a cursor.
type History struct {
	entries []HistoryEntry
	cursor  int
	newID   func() uuid.UUID
}

// NewHistory starts a history whose only entry is initial.
func NewHistory(initial string) *History {
	h := &History{newID: uuid.New}
	h.entries = []HistoryEntry{{ID: h.newID(), Fragment: initial}}
	return h
}

// Current returns the entry under the cursor.
func (h *History) Current() HistoryEntry {
	return h.entries[h.cursor]
}

// Set writes fragment as the current location. Writing the current value
// is a no-op; any other value becomes a new entry and drops the forward
// entries. The returned command delivers the change notification, or is
// nil when nothing changed.
func (h *History) Set(fragment string) tea.Cmd {
	if fragment == h.Current().Fragment {
		return nil
	}
	entry := HistoryEntry{ID: h.newID(), Fragment: fragment}
	h.entries = append(h.entries[:h.cursor+1], entry)
	h.cursor++
	return notify(entry)
}

// Go records a fragment entered from outside the app, such as a typed
// address. A leading '#' is dropped.
func (h *History) Go(fragment string) tea.Cmd {
	return h.Set(strings.TrimPrefix(fragment, "#"))
}

// Back moves one entry back. It returns nil at the oldest entry.
func (h *History) Back() tea.Cmd {
	if !h.CanBack() {
		return nil
	}
	h.cursor--
	return notify(h.Current())
}

// Forward moves one entry forward. It returns nil at the newest entry.
func (h *History) Forward() tea.Cmd {
	if !h.CanForward() {
		return nil
	}
	h.cursor++
	return notify(h.Current())
}

func (h *History) CanBack() bool {
	return h.cursor > 0
}

func (h *History) CanForward() bool {
	return h.cursor < len(h.entries)-1
}

func (h *History) Len() int {
	return len(h.entries)
}

func notify(entry HistoryEntry) tea.Cmd {
	return func() tea.Msg { return FragmentMsg{Entry: entry} }
}
