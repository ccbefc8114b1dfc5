package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gitsplit/internal/tree"
)

var samplePaths = []string{"c.txt", "a/x.go", "a/b/y.go", "d/z.go"}

func newTestCursor(t *testing.T) *Cursor {
	t.Helper()
	tr, err := tree.FromPaths(samplePaths)
	require.NoError(t, err)
	c, err := NewCursor(tr)
	require.NoError(t, err)
	return c
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestNewCursorEmpty(t *testing.T) {
	_, err := NewCursor(tree.New())
	assert.ErrorIs(t, err, tree.ErrEmptyCollection)
}

func TestCursorOrdering(t *testing.T) {
	c := newTestCursor(t)
	assert.Equal(t, []string{"a", "d", "c.txt"}, names(c.Entries()))
	assert.Equal(t, "./", c.Breadcrumb())

	require.True(t, c.Enter())
	assert.Equal(t, []string{"b", "x.go"}, names(c.Entries()))
	assert.Equal(t, "a/", c.Breadcrumb())
}

func TestCursorWraps(t *testing.T) {
	c := newTestCursor(t)
	c.Up()
	assert.Equal(t, "c.txt", c.Focused().Name)
	c.Down()
	assert.Equal(t, "a", c.Focused().Name)
	c.Down()
	c.Down()
	c.Down()
	assert.Equal(t, "a", c.Focused().Name)
}

func TestCursorEnterLeave(t *testing.T) {
	c := newTestCursor(t)

	c.Down() // d
	require.True(t, c.Enter())
	assert.Equal(t, "d/", c.Breadcrumb())

	assert.False(t, c.Enter(), "files cannot be entered")

	require.True(t, c.Leave())
	assert.Equal(t, "./", c.Breadcrumb())
	assert.Equal(t, "d", c.Focused().Name)

	assert.False(t, c.Leave(), "root has no parent")
}

func TestCursorToggle(t *testing.T) {
	c := newTestCursor(t)
	tr := c.Tree()

	require.True(t, c.Enter()) // a
	c.Down()                   // x.go
	c.Toggle()
	assert.Equal(t, tree.Selected, c.Focused().Mark)
	assert.Equal(t, 1, tr.SelectedCount())

	require.True(t, c.Leave())
	assert.Equal(t, tree.PartiallySelected, c.Focused().Mark)

	// Partial goes to selected.
	c.Toggle()
	assert.Equal(t, tree.Selected, c.Focused().Mark)
	assert.Equal(t, 2, tr.SelectedCount())

	c.Toggle()
	assert.Equal(t, tree.Unselected, c.Focused().Mark)
	assert.Equal(t, 0, tr.SelectedCount())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, pos, rows int
		from, to     int
	}{
		{n: 5, pos: 0, rows: 0, from: 0, to: 5},
		{n: 5, pos: 4, rows: 10, from: 0, to: 5},
		{n: 10, pos: 0, rows: 4, from: 0, to: 4},
		{n: 10, pos: 5, rows: 4, from: 3, to: 7},
		{n: 10, pos: 9, rows: 4, from: 6, to: 10},
	}
	for _, tt := range tests {
		from, to := window(tt.n, tt.pos, tt.rows)
		assert.Equal(t, tt.from, from)
		assert.Equal(t, tt.to, to)
	}
}
