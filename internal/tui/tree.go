package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slmtnm/s3browse/internal/listing"
	"github.com/slmtnm/s3browse/internal/treeview"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// nodeLoadedMsg carries the listing of one tree folder.
type nodeLoadedMsg struct {
	key     string
	ticket  uint64
	listing *listing.Listing
	err     error
}

type treeModel struct {
	opts    Options
	tree    *treeview.Tree
	nodes   []treeview.Node
	entered map[string]bool
	cursor  int
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	err    error
	fatal  error
	width  int
	height int
}

func newTreeModel(opts Options) *treeModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &treeModel{
		opts:    opts,
		tree:    treeview.New(opts.Location.Prefix),
		entered: map[string]bool{},
		spinner: s,
		help:    help.New(),
		keys:    TreeKeyMap(),
		width:   80,
		height:  24,
	}
	m.relayout()
	return m
}

// Fatal returns the contract violation that halted the view, if any.
func (m *treeModel) Fatal() error {
	return m.fatal
}

// Init loads the root folder.
func (m *treeModel) Init() tea.Cmd {
	ticket := m.tree.Begin(m.tree.Root())
	m.relayout()
	return tea.Batch(m.loadNode(m.tree.Root(), ticket), m.spinner.Tick)
}

func (m *treeModel) loadNode(key string, ticket uint64) tea.Cmd {
	lister, ctx := m.opts.Lister, m.opts.ctx()
	return func() tea.Msg {
		l, err := lister.ListPrefix(ctx, key)
		return nodeLoadedMsg{key: key, ticket: ticket, listing: l, err: err}
	}
}

// relayout rebuilds the node list and marks nodes that just appeared.
// The cursor stays on the same key when it survives.
func (m *treeModel) relayout() {
	selected := ""
	if m.cursor < len(m.nodes) {
		selected = m.nodes[m.cursor].Key
	}

	next := m.tree.Layout(m.opts.Title)
	delta := treeview.Diff(m.nodes, next)
	m.entered = make(map[string]bool, len(delta.Enter))
	if m.nodes != nil {
		for _, k := range delta.Enter {
			m.entered[k] = true
		}
	}
	m.nodes = next

	m.cursor = 0
	for _, n := range next {
		if n.Key == selected {
			m.cursor = n.Index
			break
		}
	}
}

func (m *treeModel) anyLoading() bool {
	for _, n := range m.nodes {
		if n.State == treeview.Loading {
			return true
		}
	}
	return false
}

// Update handles messages and updates the model
func (m *treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.fatal != nil {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updateKeys(msg)

	case nodeLoadedMsg:
		m.applyNode(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *treeModel) applyNode(msg nodeLoadedMsg) {
	log := m.opts.Logger

	if msg.err != nil {
		if m.tree.Failed(msg.key, msg.ticket) {
			log.Error().Err(msg.err).Str("prefix", msg.key).Msg("listing failed")
			m.err = fmt.Errorf("could not load %s: %w", displayPrefix(msg.key), msg.err)
			m.relayout()
		}
		return
	}

	rows, err := viewmodel.TryBuild(msg.listing, m.opts.Location.IgnoreKeys())
	if err != nil {
		log.Error().Err(err).Str("prefix", msg.key).Msg("listing contains a malformed key")
		m.fatal = err
		return
	}
	if !m.tree.Loaded(msg.key, msg.ticket, rows) {
		log.Debug().Str("prefix", msg.key).Msg("dropping listing of a collapsed or reloaded folder")
		return
	}
	log.Info().Str("prefix", msg.key).Int("rows", len(rows)).Int("pages", msg.listing.Pages).Msg("folder expanded")
	m.relayout()
}

func (m *treeModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Refresh):
		root := m.tree.Root()
		m.tree.Collapse(root)
		ticket := m.tree.Begin(root)
		m.err = nil
		m.cursor = 0
		m.relayout()
		return m, tea.Batch(m.loadNode(root, ticket), m.spinner.Tick)

	case key.Matches(msg, m.keys.Open):
		return m, m.toggle()
	}

	return m, nil
}

func (m *treeModel) toggle() tea.Cmd {
	if m.cursor >= len(m.nodes) {
		return nil
	}
	n := m.nodes[m.cursor]
	if !n.IsFolder() {
		return nil
	}

	action, ticket := m.tree.Toggle(n.Key)
	switch action {
	case treeview.ActionLoad:
		m.err = nil
		m.relayout()
		return tea.Batch(m.loadNode(n.Key, ticket), m.spinner.Tick)
	case treeview.ActionCollapse:
		m.relayout()
	}
	return nil
}

// View renders the visible window of the tree.
func (m *treeModel) View() string {
	if m.fatal != nil {
		return center(fatalView(m.fatal), m.width, m.height)
	}

	var s strings.Builder

	title := "Bucket tree"
	if m.opts.Title != "" {
		title += ": " + m.opts.Title
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error())))
		s.WriteString("\n\n")
	}

	start, end := m.window()
	for _, n := range m.nodes[start:end] {
		s.WriteString(m.viewNode(n))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return center(browserStyle.Render(s.String()), m.width, m.height)
}

// window returns the node range that fits on screen around the cursor.
func (m *treeModel) window() (int, int) {
	visible := max(m.height-10, 3)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.nodes))
	return start, end
}

func (m *treeModel) viewNode(n treeview.Node) string {
	marker := " "
	if n.IsFolder() {
		switch n.State {
		case treeview.Loading:
			marker = m.spinner.View()
		case treeview.Loaded:
			marker = "▾"
		default:
			marker = "▸"
		}
	}

	name := n.Row.DisplayName
	style := fileStyle
	if n.IsFolder() {
		style = directoryStyle
	}
	if m.entered[n.Key] {
		style = enteredStyle
	}
	line := strings.Repeat("  ", n.Depth) + marker + " " + iconGlyph(n.Row.Icon) + " " + style.Render(name)

	if n.Index == m.cursor {
		return selectedStyle.Render("> ") + line
	}
	return "  " + line
}
