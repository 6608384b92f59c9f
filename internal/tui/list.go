package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slmtnm/s3browse/internal/listing"
	"github.com/slmtnm/s3browse/internal/listview"
	"github.com/slmtnm/s3browse/internal/location"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// listingLoadedMsg carries the result of one list mode load. gen tells
// results of superseded navigations apart.
type listingLoadedMsg struct {
	gen     uint64
	prefix  string
	listing *listing.Listing
	err     error
}

type listModel struct {
	opts    Options
	loc     *location.Location
	crumbs  []listview.Crumb
	rows    *listview.Table
	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	gen     uint64
	loading bool
	err     error
	status  string
	fatal   error
	width   int
	height  int
}

func newListModel(opts Options) (*listModel, error) {
	crumbs, err := listview.Breadcrumb(opts.Location)
	if err != nil {
		return nil, err
	}

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(20),
		table.WithStyles(table.Styles{
			Header:   tableHeaderStyle,
			Selected: tableSelectedStyle,
			Cell:     fileStyle,
		}),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &listModel{
		opts:    opts,
		loc:     opts.Location,
		crumbs:  crumbs,
		rows:    listview.NewTable(),
		table:   t,
		spinner: s,
		help:    help.New(),
		keys:    DefaultKeyMap(),
		loading: true,
	}
	m.resize(80, 24)
	return m, nil
}

// Fatal returns the contract violation that halted the view, if any.
func (m *listModel) Fatal() error {
	return m.fatal
}

// Init starts the first load.
func (m *listModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m *listModel) load() tea.Cmd {
	gen, prefix, lister, ctx := m.gen, m.loc.Prefix, m.opts.Lister, m.opts.ctx()
	return func() tea.Msg {
		l, err := lister.ListPrefix(ctx, prefix)
		return listingLoadedMsg{gen: gen, prefix: prefix, listing: l, err: err}
	}
}

// navigate drops the current rows and loads prefix.
func (m *listModel) navigate(prefix string) tea.Cmd {
	loc := m.loc.WithPrefix(prefix)
	crumbs, err := listview.Breadcrumb(loc)
	if err != nil {
		m.fatal = err
		return nil
	}
	m.loc = loc
	m.crumbs = crumbs
	return m.reload()
}

func (m *listModel) reload() tea.Cmd {
	m.gen++
	m.rows.Clear()
	m.syncTable("")
	m.loading = true
	m.err = nil
	m.status = ""
	return tea.Batch(m.load(), m.spinner.Tick)
}

// Update handles messages and updates the model
func (m *listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.fatal != nil {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updateKeys(msg)

	case listingLoadedMsg:
		return m, m.applyListing(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *listModel) applyListing(msg listingLoadedMsg) tea.Cmd {
	log := m.opts.Logger
	if msg.gen != m.gen {
		log.Debug().Str("prefix", msg.prefix).Msg("dropping listing of a superseded folder")
		return nil
	}
	m.loading = false

	if msg.err != nil {
		log.Error().Err(msg.err).Str("prefix", msg.prefix).Msg("listing failed")
		m.err = fmt.Errorf("could not load %s: %w", displayPrefix(msg.prefix), msg.err)
		return nil
	}

	rows, err := viewmodel.TryBuild(msg.listing, m.loc.IgnoreKeys())
	if err != nil {
		log.Error().Err(err).Str("prefix", msg.prefix).Msg("listing contains a malformed key")
		m.fatal = err
		return nil
	}
	m.rows.Load(rows)
	m.syncTable("")
	m.table.GotoTop()

	log.Info().Str("prefix", msg.prefix).Int("rows", len(rows)).Int("pages", msg.listing.Pages).Msg("folder loaded")
	return nil
}

func (m *listModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keys.Back):
		if parent, ok := listview.Parent(m.loc); ok {
			return m, m.navigate(parent)
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		row, ok := m.rows.At(m.table.Cursor())
		if !ok {
			return m, nil
		}
		if row.IsFolder() {
			return m, m.navigate(row.Key)
		}
		href, err := m.loc.ObjectURL(row.Key)
		if err != nil {
			m.fatal = err
			return m, nil
		}
		m.status = href
		return m, nil

	case key.Matches(msg, m.keys.SortName):
		m.sortBy(listview.ColumnName)
		return m, nil

	case key.Matches(msg, m.keys.SortTime):
		m.sortBy(listview.ColumnModified)
		return m, nil

	case key.Matches(msg, m.keys.SortSize):
		m.sortBy(listview.ColumnSize)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// sortBy re-sorts every row and keeps the cursor on the same row.
func (m *listModel) sortBy(c listview.Column) {
	selected := ""
	if row, ok := m.rows.At(m.table.Cursor()); ok {
		selected = row.Key
	}
	m.rows.Click(c)
	m.syncTable(selected)
}

func (m *listModel) syncTable(selected string) {
	sortState := m.rows.Sort()
	widths := m.columnWidths()
	cols := make([]table.Column, len(listview.Columns))
	for i, c := range listview.Columns {
		title := c.String()
		if ind := sortState.Indicator(c); ind != "" {
			title += " " + ind
		}
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}

	rows := make([]table.Row, 0, m.rows.Len())
	for _, r := range m.rows.Rows() {
		name := iconGlyph(r.Icon) + " " + r.DisplayName
		if r.IsFolder() {
			name += "/"
		}
		rows = append(rows, table.Row{name, r.ModifiedText(m.opts.Formatter), r.SizeText()})
	}

	// Rows must shrink before columns or the table indexes past them.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)

	if pos, ok := m.rows.Position(selected); ok {
		m.table.SetCursor(pos)
	} else if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *listModel) columnWidths() []int {
	const modified, size = 19, 9
	name := m.width - modified - size - 12
	if name < 20 {
		name = 20
	}
	return []int{name, modified, size}
}

func (m *listModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.table.SetHeight(max(height-12, 3))
	m.syncTable(m.selectedKey())
}

func (m *listModel) selectedKey() string {
	if row, ok := m.rows.At(m.table.Cursor()); ok {
		return row.Key
	}
	return ""
}

// View renders the breadcrumb, the table and the help line.
func (m *listModel) View() string {
	if m.fatal != nil {
		return center(fatalView(m.fatal), m.width, m.height)
	}

	var s strings.Builder

	title := "Bucket"
	if m.opts.Title != "" {
		title += ": " + m.opts.Title
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(m.viewBreadcrumb())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error())))
		s.WriteString("\n\n")
	} else if m.status != "" {
		s.WriteString(successStyle.Render(m.status))
		s.WriteString("\n\n")
	}

	switch {
	case m.loading:
		s.WriteString(m.spinner.View() + " Loading...\n")
	case m.rows.Len() == 0 && m.err == nil:
		s.WriteString("No objects found in this location.\n")
	default:
		s.WriteString(m.table.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return center(browserStyle.Render(s.String()), m.width, m.height)
}

func (m *listModel) viewBreadcrumb() string {
	parts := []string{crumbLinkStyle.Render("/")}
	for _, c := range m.crumbs {
		if c.Kind == listview.CrumbText {
			parts = append(parts, crumbTextStyle.Render(c.Name))
		} else {
			parts = append(parts, crumbLinkStyle.Render(c.Name))
		}
	}
	return strings.Join(parts, directoryStyle.Render(" › "))
}

func displayPrefix(prefix string) string {
	return "/" + prefix
}
