package listview

import (
	"slices"

	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// Table is the ordered row set of the current folder.
type Table struct {
	rows  []viewmodel.Row
	index map[string]int
	sort  SortState
}

// NewTable returns an empty table in the default sort state.
func NewTable() *Table {
	return &Table{index: map[string]int{}, sort: NewSortState()}
}

// Load replaces every row and applies the default sort.
func (t *Table) Load(rows []viewmodel.Row) {
	t.rows = slices.Clone(rows)
	t.sort.Reset()
	t.resort()
}

// Clear drops every row.
func (t *Table) Clear() {
	t.rows = nil
	t.index = map[string]int{}
	t.sort.Reset()
}

// Click advances the sort state of c and re-sorts every row.
func (t *Table) Click(c Column) {
	t.sort.Click(c)
	t.resort()
}

func (t *Table) resort() {
	_, def := t.sort.Active()
	slices.SortStableFunc(t.rows, def.compare)
	t.index = make(map[string]int, len(t.rows))
	for i, r := range t.rows {
		t.index[r.Key] = i
	}
}

// Rows returns the rows in display order.
func (t *Table) Rows() []viewmodel.Row {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// At returns the row at display position i.
func (t *Table) At(i int) (viewmodel.Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return viewmodel.Row{}, false
	}
	return t.rows[i], true
}

// Position returns the display position of key.
func (t *Table) Position(key string) (int, bool) {
	i, ok := t.index[key]
	return i, ok
}

// Sort returns the current sort state.
func (t *Table) Sort() SortState {
	return t.sort
}
