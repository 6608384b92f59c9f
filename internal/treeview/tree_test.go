package treeview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmtnm/s3browse/internal/listing"
	"github.com/slmtnm/s3browse/internal/viewmodel"
)

func folder(key string) viewmodel.Row { return viewmodel.FromPrefix(key) }

func file(key string) viewmodel.Row {
	return viewmodel.FromObject(listing.Object{Key: key, Size: 1})
}

// expand toggles key and completes its load with rows.
func expand(t *testing.T, tr *Tree, key string, rows ...viewmodel.Row) {
	t.Helper()
	action, ticket := tr.Toggle(key)
	require.Equal(t, ActionLoad, action)
	require.True(t, tr.Loaded(key, ticket, rows))
}

func TestToggleStateMachine(t *testing.T) {
	tr := New("")
	assert.Equal(t, Unloaded, tr.State(""))

	action, ticket := tr.Toggle("")
	assert.Equal(t, ActionLoad, action)
	assert.Equal(t, Loading, tr.State(""))

	again, _ := tr.Toggle("")
	assert.Equal(t, ActionNone, again, "clicks while loading are ignored")

	require.True(t, tr.Loaded("", ticket, []viewmodel.Row{folder("a/")}))
	assert.Equal(t, Loaded, tr.State(""))

	action, _ = tr.Toggle("")
	assert.Equal(t, ActionCollapse, action)
	assert.Equal(t, Unloaded, tr.State(""))
}

func TestToggleIgnoresFiles(t *testing.T) {
	tr := New("")
	action, _ := tr.Toggle("readme.txt")
	assert.Equal(t, ActionNone, action)
}

func TestCollapseCascades(t *testing.T) {
	tr := New("")
	expand(t, tr, "", folder("a/"), file("top.txt"))
	expand(t, tr, "a/", folder("a/b/"))
	expand(t, tr, "a/b/", file("a/b/c.txt"))
	assert.Equal(t, []string{"", "a/", "a/b/"}, tr.LoadedKeys())

	action, _ := tr.Toggle("a/")
	assert.Equal(t, ActionCollapse, action)
	assert.Equal(t, []string{""}, tr.LoadedKeys())
	assert.Equal(t, Unloaded, tr.State("a/b/"))

	action, ticket := tr.Toggle("a/")
	assert.Equal(t, ActionLoad, action, "re-expanding must fetch again")
	assert.NotZero(t, ticket)
}

func TestCollapseDropsInFlightDescendants(t *testing.T) {
	tr := New("")
	expand(t, tr, "", folder("a/"))
	expand(t, tr, "a/", folder("a/b/"))

	_, ticket := tr.Toggle("a/b/")
	tr.Toggle("a/")

	assert.False(t, tr.Loaded("a/b/", ticket, []viewmodel.Row{file("a/b/x")}), "stale result must be dropped")
	assert.Equal(t, []string{""}, tr.LoadedKeys())
}

func TestStaleTicketAfterReexpand(t *testing.T) {
	tr := New("")
	_, first := tr.Toggle("")
	tr.Collapse("")
	_, second := tr.Toggle("")

	assert.False(t, tr.Loaded("", first, nil))
	assert.Equal(t, Loading, tr.State(""))
	assert.True(t, tr.Loaded("", second, nil))
	assert.Equal(t, Loaded, tr.State(""))

	rows, ok := tr.Children("")
	assert.True(t, ok)
	assert.Empty(t, rows)
}

func TestFailedRevertsToUnloaded(t *testing.T) {
	tr := New("")
	_, ticket := tr.Toggle("")

	assert.False(t, tr.Failed("", ticket+1))
	assert.Equal(t, Loading, tr.State(""))

	assert.True(t, tr.Failed("", ticket))
	assert.Equal(t, Unloaded, tr.State(""))
	assert.Empty(t, tr.LoadedKeys())
}

func TestLayoutPreOrder(t *testing.T) {
	tr := New("")
	expand(t, tr, "", file("z.txt"), folder("b/"), folder("a/"))
	expand(t, tr, "a/", file("a/2.txt"), file("a/10.txt"))

	nodes := tr.Layout("bucket")
	got := make([]string, len(nodes))
	for i, n := range nodes {
		got[i] = n.Key
		assert.Equal(t, i, n.Index)
	}
	assert.Equal(t, []string{"", "a/", "a/2.txt", "a/10.txt", "b/", "z.txt"}, got)

	assert.Equal(t, "bucket", nodes[0].Row.DisplayName)
	assert.Equal(t, []int{0, 1, 2, 2, 1, 1}, []int{nodes[0].Depth, nodes[1].Depth, nodes[2].Depth, nodes[3].Depth, nodes[4].Depth, nodes[5].Depth})
	assert.Equal(t, Loaded, nodes[1].State)
	assert.Equal(t, Unloaded, nodes[4].State)
	assert.False(t, nodes[5].IsFolder())
}

func TestLayoutIdempotent(t *testing.T) {
	tr := New("pub/")
	expand(t, tr, "pub/", folder("pub/x/"), file("pub/y"))

	first := tr.Layout("")
	second := tr.Layout("")
	assert.Equal(t, first, second)
	assert.Equal(t, "pub", first[0].Row.DisplayName)

	d := Diff(first, second)
	assert.Empty(t, d.Enter)
	assert.Empty(t, d.Exit)
	assert.Equal(t, []string{"pub/", "pub/x/", "pub/y"}, d.Update)
}

func TestDiff(t *testing.T) {
	tr := New("")
	expand(t, tr, "", folder("a/"), folder("b/"))
	before := tr.Layout("")

	expand(t, tr, "a/", file("a/new.txt"))
	tr.Toggle("b/")
	tr.Collapse("b/")
	afterExpand := tr.Layout("")

	d := Diff(before, afterExpand)
	assert.Equal(t, []string{"a/new.txt"}, d.Enter)
	assert.Empty(t, d.Exit)

	tr.Toggle("a/")
	collapsed := tr.Layout("")
	d = Diff(afterExpand, collapsed)
	assert.Equal(t, []string{"a/new.txt"}, d.Exit)
	assert.Empty(t, d.Enter)
}
