// Package treeview holds the tree mode state: a lazily expanded folder
// tree keyed by prefix and its pre-order layout.
package treeview

import (
	"slices"
	"sort"
	"strings"

	"github.com/slmtnm/s3browse/internal/listview"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// State of a folder node.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return "unloaded"
}

// Action is what the caller must do after Toggle.
type Action int

const (
	ActionNone Action = iota
	// ActionLoad asks the caller to list the folder and report back with
	// Loaded or Failed using the returned ticket.
	ActionLoad
	// ActionCollapse reports that the folder and its descendants were
	// dropped.
	ActionCollapse
)

// Tree maps every loaded folder prefix to its children. A folder absent
// from the map is unloaded, even if it was loaded before.
type Tree struct {
	root    string
	loaded  map[string][]viewmodel.Row
	loading map[string]uint64
	seq     uint64
}

// New returns a tree rooted at prefix root with nothing loaded.
func New(root string) *Tree {
	return &Tree{
		root:    root,
		loaded:  map[string][]viewmodel.Row{},
		loading: map[string]uint64{},
	}
}

// Root returns the root prefix.
func (t *Tree) Root() string {
	return t.root
}

// State returns the state of folder key.
func (t *Tree) State(key string) State {
	if _, ok := t.loading[key]; ok {
		return Loading
	}
	if _, ok := t.loaded[key]; ok {
		return Loaded
	}
	return Unloaded
}

// Begin marks key as loading and returns the ticket its result must
// carry. A previous in-flight load of key becomes stale.
func (t *Tree) Begin(key string) uint64 {
	t.seq++
	t.loading[key] = t.seq
	return t.seq
}

// Toggle expands an unloaded folder or collapses a loaded one. Files and
// folders that are still loading are left alone.
func (t *Tree) Toggle(key string) (Action, uint64) {
	if key != t.root && !strings.HasSuffix(key, "/") {
		return ActionNone, 0
	}
	switch t.State(key) {
	case Unloaded:
		return ActionLoad, t.Begin(key)
	case Loaded:
		t.Collapse(key)
		return ActionCollapse, 0
	}
	return ActionNone, 0
}

// Loaded stores the children of key if ticket is still current. It
// reports false for stale results, which are dropped.
func (t *Tree) Loaded(key string, ticket uint64, rows []viewmodel.Row) bool {
	if cur, ok := t.loading[key]; !ok || cur != ticket {
		return false
	}
	delete(t.loading, key)

	children := slices.Clone(rows)
	slices.SortStableFunc(children, listview.DefaultOrder)
	t.loaded[key] = children
	return true
}

// Failed returns key to Unloaded if ticket is still current.
func (t *Tree) Failed(key string, ticket uint64) bool {
	if cur, ok := t.loading[key]; !ok || cur != ticket {
		return false
	}
	delete(t.loading, key)
	return true
}

// Collapse forgets key and every descendant, loaded or loading.
func (t *Tree) Collapse(key string) {
	for k := range t.loaded {
		if strings.HasPrefix(k, key) {
			delete(t.loaded, k)
		}
	}
	for k := range t.loading {
		if strings.HasPrefix(k, key) {
			delete(t.loading, k)
		}
	}
}

// Children returns the loaded children of key.
func (t *Tree) Children(key string) ([]viewmodel.Row, bool) {
	rows, ok := t.loaded[key]
	return rows, ok
}

// LoadedKeys returns every loaded prefix in lexical order.
func (t *Tree) LoadedKeys() []string {
	keys := make([]string, 0, len(t.loaded))
	for k := range t.loaded {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
