// Package listview holds the list mode state: the breadcrumb and a row
// table with a per-column cyclic sort state.
package listview

import (
	"cmp"
	"strings"

	"github.com/maruel/natural"

	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// Column is a sortable table column.
type Column int

const (
	ColumnName Column = iota
	ColumnModified
	ColumnSize
	columnCount
)

func (c Column) String() string {
	switch c {
	case ColumnName:
		return "Name"
	case ColumnModified:
		return "Last Modified"
	case ColumnSize:
		return "Size"
	}
	return "?"
}

// Columns lists the sortable columns in display order.
var Columns = []Column{ColumnName, ColumnModified, ColumnSize}

// Direction of a sort definition.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Compare orders two rows; negative means a sorts first.
type Compare func(a, b viewmodel.Row) int

// SortDef is one step of a column's sort cycle.
type SortDef struct {
	Key       string
	Direction Direction
	Icon      string
	compare   Compare
}

// Compare orders a and b under d.
func (d SortDef) Compare(a, b viewmodel.Row) int {
	return d.compare(a, b)
}

// DefaultOrder is the order rows get right after a load: folders first,
// then names ascending.
func DefaultOrder(a, b viewmodel.Row) int {
	return sortDefs[ColumnName][0].compare(a, b)
}

func compareNames(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	default:
		return 1
	}
}

// byType compares "0:"/"1:" type keys. The group digit always sorts
// folders first and dir only applies to the names.
func byType(dir Direction) Compare {
	return func(a, b viewmodel.Row) int {
		ga, na, _ := strings.Cut(a.Sort.Type, ":")
		gb, nb, _ := strings.Cut(b.Sort.Type, ":")
		if c := cmp.Compare(ga, gb); c != 0 {
			return c
		}
		return directed(dir, compareNames(na, nb))
	}
}

func byName(dir Direction) Compare {
	return func(a, b viewmodel.Row) int {
		return directed(dir, compareNames(a.DisplayName, b.DisplayName))
	}
}

func byMTime(dir Direction) Compare {
	return func(a, b viewmodel.Row) int {
		return directed(dir, cmp.Compare(a.Sort.MTime, b.Sort.MTime))
	}
}

func bySize(dir Direction) Compare {
	return func(a, b viewmodel.Row) int {
		return directed(dir, cmp.Compare(a.Sort.Size, b.Sort.Size))
	}
}

func directed(dir Direction, c int) int {
	if dir == Descending {
		return -c
	}
	return c
}

var sortDefs = [columnCount][]SortDef{
	ColumnName: {
		{Key: "type", Direction: Ascending, Icon: "▲", compare: byType(Ascending)},
		{Key: "type", Direction: Descending, Icon: "▼", compare: byType(Descending)},
		{Key: "name", Direction: Ascending, Icon: "△", compare: byName(Ascending)},
		{Key: "name", Direction: Descending, Icon: "▽", compare: byName(Descending)},
	},
	ColumnModified: {
		{Key: "mtime", Direction: Ascending, Icon: "▲", compare: byMTime(Ascending)},
		{Key: "mtime", Direction: Descending, Icon: "▼", compare: byMTime(Descending)},
	},
	ColumnSize: {
		{Key: "size", Direction: Ascending, Icon: "▲", compare: bySize(Ascending)},
		{Key: "size", Direction: Descending, Icon: "▼", compare: bySize(Descending)},
	},
}

// Defs returns the sort cycle of c.
func Defs(c Column) []SortDef {
	return sortDefs[c]
}

// Unset marks a column that is not the active sort.
const Unset = -1

// SortState is the per-column index into each column's sort cycle. At
// most one column is set at a time.
type SortState struct {
	index [columnCount]int
}

// NewSortState returns the default state: Name at its first definition.
func NewSortState() SortState {
	var s SortState
	s.Reset()
	return s
}

// Reset restores the default state.
func (s *SortState) Reset() {
	for i := range s.index {
		s.index[i] = Unset
	}
	s.index[ColumnName] = 0
}

// Click advances c one step through its cycle, or activates it at its
// first definition if another column was active.
func (s *SortState) Click(c Column) {
	next := 0
	if cur := s.index[c]; cur != Unset {
		next = (cur + 1) % len(sortDefs[c])
	}
	for i := range s.index {
		s.index[i] = Unset
	}
	s.index[c] = next
}

// Index returns the state of c, Unset if c is not active.
func (s SortState) Index(c Column) int {
	return s.index[c]
}

// Active returns the active column and its definition.
func (s SortState) Active() (Column, SortDef) {
	for _, c := range Columns {
		if i := s.index[c]; i != Unset {
			return c, sortDefs[c][i]
		}
	}
	return ColumnName, sortDefs[ColumnName][0]
}

// Indicator returns the sort icon shown in the header of c.
func (s SortState) Indicator(c Column) string {
	if i := s.index[c]; i != Unset {
		return sortDefs[c][i].Icon
	}
	return ""
}
