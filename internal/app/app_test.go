package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/regview/internal/config"
	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/registry"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

// === Fake registry service ===

type fakeService struct {
	*httptest.Server
	indexHits  atomic.Int32
	objectHits atomic.Int32
}

var objects = map[string]map[string]any{
	"mntner/FOO-MNT": {
		"category": "mntner",
		"object": map[string]any{
			"filename":  "FOO-MNT",
			"key_value": map[string]any{"mntner": [][]any{{0, "FOO-MNT"}}, "admin-c": [][]any{{1, "FOO-DN42"}}},
		},
		"forward_links": [][]any{{1, "person/FOO-DN42"}},
		"back_links":    []string{"aut-num/AS4242420000"},
	},
	"mntner/BAR-MNT": {
		"category": "mntner",
		"object": map[string]any{
			"filename":  "BAR-MNT",
			"key_value": map[string]any{"mntner": [][]any{{0, "BAR-MNT"}}},
		},
		"forward_links": [][]any{},
		"back_links":    []string{},
	},
	"person/FOO-DN42": {
		"category": "person",
		"object": map[string]any{
			"filename":  "FOO-DN42",
			"key_value": map[string]any{"person": [][]any{{0, "Foo"}}, "mnt-by": [][]any{{1, "FOO-MNT"}}},
		},
		"forward_links": [][]any{{1, "mntner/FOO-MNT"}},
		"back_links":    []string{"mntner/FOO-MNT"},
	},
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	s := &fakeService{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/index/", func(w http.ResponseWriter, _ *http.Request) {
		s.indexHits.Add(1)
		_, _ = w.Write([]byte(`{"i":{"commit":"c0ffee","time":"1700000000","roa":true},` +
			`"d":{"aut-num":["AS4242420000"],"mntner":["FOO-MNT","BAR-MNT"],"person":["FOO-DN42"]}}`))
	})
	mux.HandleFunc("/api/object/", func(w http.ResponseWriter, r *http.Request) {
		s.objectHits.Add(1)
		obj, ok := objects[r.URL.Query().Get("type")+"/"+r.URL.Query().Get("name")]
		if !ok {
			http.Error(w, "object not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(obj)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Search.Debounce = 0
	return cfg
}

func newTestModel(t *testing.T, svc *fakeService, cfg config.Config) Model {
	t.Helper()
	client, err := registry.NewClient(svc.URL + "/api/")
	require.NoError(t, err)
	nav := explorer.NewNavigator(context.Background(),
		explorer.NewIndexCache(client), explorer.NewResolver(client),
		explorer.Options{MinQueryLength: cfg.Search.MinQueryLength, BatchSize: cfg.Search.BatchSize})
	m := New(nav, Options{Config: cfg, Server: svc.URL})
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return m
}

// drive feeds msg to m and runs every resulting command to completion.
// Only use it with models whose commands never sleep.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if batch, ok := next.(tea.BatchMsg); ok {
			for _, c := range batch {
				if c != nil {
					queue = append(queue, c())
				}
			}
			continue
		}
		if next == nil {
			continue
		}
		model, cmd := m.Update(next)
		m = model.(Model)
		if cmd != nil {
			queue = append(queue, cmd())
		}
	}
	return m
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	return drive(t, m, cmd())
}

func started(t *testing.T, svc *fakeService, fragment string) Model {
	t.Helper()
	cfg := testConfig()
	m := newTestModel(t, svc, cfg)
	m.opts.Fragment = fragment
	m = drive(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return run(t, m, m.nav.Start(fragment))
}

func screen(m Model) string {
	return ansi.Strip(m.View())
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestApp_StartShowsCategories(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")

	require.Equal(t, explorer.StateMain, m.nav.State())
	out := screen(m)
	require.Contains(t, out, "Categories")
	require.Contains(t, out, "mntner  - 2")
	require.EqualValues(t, 1, svc.indexHits.Load())
}

func TestApp_ConfigReloadHidesCounts(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")

	next := testConfig()
	next.UI.ShowCounts = false
	m = drive(t, m, ConfigReloadedMsg{Config: next})

	out := screen(m)
	require.Contains(t, out, "mntner")
	require.NotContains(t, out, "mntner  - 2")
	require.Equal(t, explorer.StateMain, m.nav.State())
}

func TestApp_TypingSearches(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")

	m = typeText(t, m, "mnt")
	require.Equal(t, explorer.StateSearch, m.nav.State())
	out := screen(m)
	require.Contains(t, out, "FOO-MNT [mntner]")
	require.Contains(t, out, "BAR-MNT [mntner]")
	require.Equal(t, "?mnt", m.nav.Fragment())
	require.Zero(t, svc.objectHits.Load())
}

func TestApp_ShortQueryStaysOnMain(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")

	m = typeText(t, m, "m")
	require.Equal(t, explorer.StateMain, m.nav.State())
	require.Contains(t, screen(m), "Categories")
}

func TestApp_DebounceOnlyLatestFires(t *testing.T) {
	svc := newFakeService(t)
	cfg := config.Defaults()
	m := newTestModel(t, svc, cfg)
	m = drive(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = run(t, m, m.nav.Start(""))

	m.input.SetValue("FOO")
	m.debounce = 2
	m = drive(t, m, debounceMsg{version: 1, query: "BAR"})
	require.Equal(t, explorer.StateMain, m.nav.State(), "stale debounce must not search")

	m = drive(t, m, debounceMsg{version: 2, query: "mnt"})
	require.Equal(t, explorer.StateSearch, m.nav.State())
}

func TestApp_OpenResultAndFollowLink(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")
	m = typeText(t, m, "mnt")

	// leave the search box and open the first result
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, explorer.StateObject, m.nav.State())
	require.Equal(t, "/mntner/FOO-MNT", m.nav.Fragment())
	out := screen(m)
	require.Contains(t, out, "admin-c  FOO-DN42 [person]")
	require.Contains(t, out, "AS4242420000 [aut-num]")
	require.Equal(t, "mntner/FOO-MNT", m.input.Value())

	// title, then the admin-c link
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "/person/FOO-DN42", m.nav.Fragment())
	require.EqualValues(t, 2, svc.objectHits.Load())
}

func TestApp_BackRestoresWithoutFetch(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "/mntner/FOO-MNT")
	require.Equal(t, explorer.StateObject, m.nav.State())

	// follow the admin-c link
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "/person/FOO-DN42", m.nav.Fragment())
	require.EqualValues(t, 2, svc.objectHits.Load())

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyLeft, Alt: true})
	require.Equal(t, "/mntner/FOO-MNT", m.nav.Fragment())
	require.Equal(t, explorer.StateObject, m.nav.State())
	require.Contains(t, screen(m), "admin-c  FOO-DN42 [person]")

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRight, Alt: true})
	require.Equal(t, "/person/FOO-DN42", m.nav.Fragment())
	require.EqualValues(t, 2, svc.objectHits.Load())
}

func TestApp_CategoryClickFillsSearchBox(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	// aut-num, mntner, person
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, "mntner/", m.input.Value())
	require.Equal(t, explorer.StateSearch, m.nav.State())
	require.Equal(t, "?mntner/", m.nav.Fragment())
}

func TestApp_UnknownFragmentShowsError(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "/mntner/NOPE-MNT")

	require.Equal(t, explorer.StateError, m.nav.State())
	require.Contains(t, screen(m), "Object not found: mntner/NOPE-MNT")
	require.Zero(t, svc.objectHits.Load())
}

func TestApp_InfoModal(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")})

	require.True(t, m.info.Visible())
	require.Contains(t, screen(m), "c0ffee")
	state := m.nav.State()

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.info.Visible())
	require.Equal(t, state, m.nav.State())
}

func TestApp_LogOverlayOnlyInDebug(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.False(t, m.logOverlay.Visible())

	m.opts.Debug = true
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.True(t, m.logOverlay.Visible())
}

func TestApp_ViewFitsScreen(t *testing.T) {
	svc := newFakeService(t)
	m := started(t, svc, "/mntner/FOO-MNT")

	lines := strings.Split(screen(m), "\n")
	require.Len(t, lines, 30)
	for _, l := range lines {
		require.LessOrEqual(t, ansi.StringWidth(l), 100)
	}
}

func TestApp_Program(t *testing.T) {
	svc := newFakeService(t)
	m := newTestModel(t, svc, config.Defaults())

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Categories"))
	}, teatest.WithDuration(5*time.Second))

	tm.Type("BAR")
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("mntner/BAR-MNT"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	require.EqualValues(t, 1, svc.indexHits.Load())
}
