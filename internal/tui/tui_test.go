package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmtnm/s3browse/internal/listing"
	"github.com/slmtnm/s3browse/internal/location"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

type fakeLister struct {
	mu       sync.Mutex
	listings map[string]*listing.Listing
	errs     map[string]error
	calls    []string
}

func (f *fakeLister) ListPrefix(_ context.Context, prefix string) (*listing.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, prefix)
	if err := f.errs[prefix]; err != nil {
		return nil, err
	}
	if l, ok := f.listings[prefix]; ok {
		return l, nil
	}
	return &listing.Listing{Prefix: prefix, Pages: 1}, nil
}

func newFake() *fakeLister {
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeLister{
		listings: map[string]*listing.Listing{
			"": {
				Contents: []listing.Object{
					{Key: "index.html", Size: 10, LastModified: mtime},
					{Key: "zeta.png", Size: 2048, LastModified: mtime},
				},
				CommonPrefixes: []string{"docs/", "assets/"},
				Pages:          1,
			},
			"docs/": {
				Prefix:         "docs/",
				Contents:       []listing.Object{{Key: "docs/readme.txt", Size: 5, LastModified: mtime}},
				CommonPrefixes: []string{"docs/api/"},
				Pages:          1,
			},
		},
		errs: map[string]error{},
	}
}

func testOptions(t *testing.T, rawURL string, lister Lister) Options {
	t.Helper()
	loc, err := location.Resolve(rawURL, "")
	require.NoError(t, err)
	return Options{
		Lister:    lister,
		Location:  loc,
		Formatter: viewmodel.Formatter{Location: time.UTC},
		Logger:    zerolog.Nop(),
		Title:     "bucket",
	}
}

// collect runs cmd and every command batched inside it, returning the
// listing results. Spinner ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	case listingLoadedMsg, nodeLoadedMsg:
		out = append(out, msg)
	}
	return out
}

// settle feeds every listing result of cmd back into m.
func settle(m tea.Model, cmd tea.Cmd) tea.Model {
	for _, msg := range collect(cmd) {
		var next tea.Cmd
		m, next = m.Update(msg)
		m = settle(m, next)
	}
	return m
}

func press(m tea.Model, keys string) (tea.Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	return m.Update(msg)
}

func keysOf(rows []viewmodel.Row) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func TestNewRejectsMissingLister(t *testing.T) {
	opts := testOptions(t, "https://b.example.com/", nil)
	opts.Lister = nil
	_, err := New(opts)
	assert.Error(t, err)
}

func TestNewPicksModel(t *testing.T) {
	m, err := New(testOptions(t, "https://b.example.com/", newFake()))
	require.NoError(t, err)
	assert.IsType(t, &listModel{}, m)

	m, err = New(testOptions(t, "https://b.example.com/?mode=tree", newFake()))
	require.NoError(t, err)
	assert.IsType(t, &treeModel{}, m)
}

func TestListInitialLoad(t *testing.T) {
	fake := newFake()
	m, err := New(testOptions(t, "https://b.example.com/", fake))
	require.NoError(t, err)

	m = settle(m, m.Init())
	lm := m.(*listModel)

	assert.False(t, lm.loading)
	assert.Equal(t, []string{""}, fake.calls)
	assert.Equal(t, []string{"assets/", "docs/", "index.html", "zeta.png"}, keysOf(lm.rows.Rows()))
	assert.Len(t, lm.table.Rows(), 4)
	assert.Contains(t, m.View(), "index.html")
}

func TestListNavigateAndBack(t *testing.T) {
	fake := newFake()
	m, _ := New(testOptions(t, "https://b.example.com/", fake))
	m = settle(m, m.Init())

	m, _ = press(m, "down")
	m, cmd := press(m, "enter")
	lm := m.(*listModel)
	assert.Equal(t, "docs/", lm.loc.Prefix)
	assert.True(t, lm.loading)
	assert.Zero(t, lm.rows.Len(), "rows are cleared before the next load")

	m = settle(m, cmd)
	lm = m.(*listModel)
	assert.Equal(t, []string{"docs/api/", "docs/readme.txt"}, keysOf(lm.rows.Rows()))
	require.Len(t, lm.crumbs, 1)
	assert.Equal(t, "docs", lm.crumbs[0].Name)

	m, cmd = press(m, "backspace")
	m = settle(m, cmd)
	lm = m.(*listModel)
	assert.Equal(t, "", lm.loc.Prefix)
	assert.Equal(t, []string{"", "docs/", ""}, fake.calls)
}

func TestListOpenFileShowsURL(t *testing.T) {
	m, _ := New(testOptions(t, "https://b.example.com/", newFake()))
	m = settle(m, m.Init())

	m, _ = press(m, "down")
	m, _ = press(m, "down")
	m, cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, "https://b.example.com/index.html", m.(*listModel).status)
}

func TestListDropsSupersededListing(t *testing.T) {
	fake := newFake()
	m, _ := New(testOptions(t, "https://b.example.com/", fake))
	lm := m.(*listModel)

	first := collect(lm.load())
	require.Len(t, first, 1)

	cmd := lm.navigate("docs/")
	m, _ = m.Update(first[0])
	assert.True(t, lm.loading, "the root listing must not land in docs/")
	assert.Zero(t, lm.rows.Len())

	m = settle(m, cmd)
	assert.Equal(t, []string{"docs/api/", "docs/readme.txt"}, keysOf(m.(*listModel).rows.Rows()))
}

func TestListFailureShowsError(t *testing.T) {
	fake := newFake()
	fake.errs[""] = errors.New("boom")
	m, _ := New(testOptions(t, "https://b.example.com/", fake))
	m = settle(m, m.Init())

	lm := m.(*listModel)
	require.Error(t, lm.err)
	assert.Contains(t, lm.err.Error(), "could not load /")
	assert.Zero(t, lm.rows.Len())
	assert.Nil(t, lm.Fatal())
}

func TestListSortKeepsCursor(t *testing.T) {
	m, _ := New(testOptions(t, "https://b.example.com/", newFake()))
	m = settle(m, m.Init())
	m, _ = press(m, "down")
	m, _ = press(m, "down")
	lm := m.(*listModel)
	require.Equal(t, "index.html", lm.selectedKey())

	m, _ = press(m, "s")
	m, _ = press(m, "s")
	assert.Equal(t, []string{"zeta.png", "index.html", "assets/", "docs/"}, keysOf(lm.rows.Rows()))
	assert.Equal(t, "index.html", lm.selectedKey())
	assert.Equal(t, "Size ▼", lm.table.Columns()[2].Title)
}

func TestListBadKeyIsFatal(t *testing.T) {
	fake := newFake()
	fake.listings[""] = &listing.Listing{Contents: []listing.Object{{Key: "/abs"}}}
	m, _ := New(testOptions(t, "https://b.example.com/", fake))
	m = settle(m, m.Init())

	lm := m.(*listModel)
	require.Error(t, lm.Fatal())
	assert.Contains(t, m.View(), "Fatal")
}

func treeKeys(m *treeModel) []string {
	keys := make([]string, len(m.nodes))
	for i, n := range m.nodes {
		keys[i] = n.Key
	}
	return keys
}

func TestTreeExpandAndCollapse(t *testing.T) {
	fake := newFake()
	m, err := New(testOptions(t, "https://b.example.com/?mode=tree", fake))
	require.NoError(t, err)
	m = settle(m, m.Init())
	tm := m.(*treeModel)

	assert.Equal(t, []string{"", "assets/", "docs/", "index.html", "zeta.png"}, treeKeys(tm))
	assert.True(t, tm.entered["docs/"])

	m, _ = press(m, "down")
	m, _ = press(m, "down")
	m, cmd := press(m, " ")
	m = settle(m, cmd)
	assert.Equal(t, []string{"", "assets/", "docs/", "docs/api/", "docs/readme.txt", "index.html", "zeta.png"}, treeKeys(tm))
	assert.Equal(t, 2, tm.cursor, "cursor stays on docs/")
	assert.True(t, tm.entered["docs/readme.txt"])
	assert.False(t, tm.entered["docs/"])

	m, cmd = press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"", "assets/", "docs/", "index.html", "zeta.png"}, treeKeys(tm))
	assert.Equal(t, []string{"", "docs/"}, fake.calls)
}

func TestTreeDropsListingOfCollapsedFolder(t *testing.T) {
	m, _ := New(testOptions(t, "https://b.example.com/?mode=tree", newFake()))
	m = settle(m, m.Init())
	tm := m.(*treeModel)

	tm.cursor = 2
	cmd := tm.toggle()
	pending := collect(cmd)
	require.Len(t, pending, 1)

	// Reloading the root collapses docs/ before its listing arrives.
	m, cmd = press(m, "r")
	m, _ = m.Update(pending[0])
	assert.NotContains(t, treeKeys(tm), "docs/readme.txt")

	m = settle(m, cmd)
	assert.Equal(t, []string{"", "assets/", "docs/", "index.html", "zeta.png"}, treeKeys(tm))
}

func TestTreeFailureReturnsToUnloaded(t *testing.T) {
	fake := newFake()
	fake.errs["docs/"] = errors.New("denied")
	m, _ := New(testOptions(t, "https://b.example.com/?mode=tree", fake))
	m = settle(m, m.Init())
	tm := m.(*treeModel)

	tm.cursor = 2
	m = settle(m, tm.toggle())
	require.Error(t, tm.err)
	assert.Contains(t, tm.err.Error(), "could not load /docs/")
	assert.Len(t, tm.nodes, 5)

	delete(fake.errs, "docs/")
	m = settle(m, tm.toggle())
	assert.Nil(t, tm.err)
	assert.Len(t, tm.nodes, 7)
}

func TestTreeIgnoresFiles(t *testing.T) {
	m, _ := New(testOptions(t, "https://b.example.com/?mode=tree", newFake()))
	m = settle(m, m.Init())
	tm := m.(*treeModel)

	tm.cursor = 3
	assert.Nil(t, tm.toggle())
	assert.Len(t, tm.nodes, 5)
}
