package treeview

import (
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// Node is one positioned tree entry. Index is the pre-order position
// (vertical slot) and Depth the nesting level (horizontal offset).
type Node struct {
	Key   string
	Row   viewmodel.Row
	Depth int
	Index int
	State State
}

// IsFolder reports whether the node can be expanded.
func (n Node) IsFolder() bool {
	return n.Row.IsFolder()
}

func rootRow(root, label string) viewmodel.Row {
	if root != "" {
		r := viewmodel.FromPrefix(root)
		if label != "" {
			r.DisplayName = label
		}
		return r
	}
	if label == "" {
		label = "/"
	}
	return viewmodel.Row{
		Key:         "",
		DisplayName: label,
		Kind:        viewmodel.Folder,
		Icon:        viewmodel.IconFolder,
		Sort:        viewmodel.SortKeys{Type: "0:" + label, MTime: -1, Size: -1},
	}
}

// Layout lays out the tree from scratch in pre-order. label names the
// root node; empty uses the prefix name.
func (t *Tree) Layout(label string) []Node {
	var nodes []Node
	var walk func(row viewmodel.Row, depth int)
	walk = func(row viewmodel.Row, depth int) {
		n := Node{Key: row.Key, Row: row, Depth: depth, Index: len(nodes)}
		if row.IsFolder() {
			n.State = t.State(row.Key)
		}
		nodes = append(nodes, n)
		for _, child := range t.loaded[row.Key] {
			walk(child, depth+1)
		}
	}
	walk(rootRow(t.root, label), 0)
	return nodes
}

// Delta is the keyed difference between two layouts.
type Delta struct {
	Enter  []string
	Update []string
	Exit   []string
}

// Diff matches nodes by key. Enter and Update follow next's order, Exit
// follows prev's order.
func Diff(prev, next []Node) Delta {
	before := make(map[string]bool, len(prev))
	for _, n := range prev {
		before[n.Key] = true
	}
	after := make(map[string]bool, len(next))

	var d Delta
	for _, n := range next {
		after[n.Key] = true
		if before[n.Key] {
			d.Update = append(d.Update, n.Key)
		} else {
			d.Enter = append(d.Enter, n.Key)
		}
	}
	for _, n := range prev {
		if !after[n.Key] {
			d.Exit = append(d.Exit, n.Key)
		}
	}
	return d
}
