// Package navigator is the interactive front end of a split: a directory
// browser over the session tree, a commit message editor and an error popup.
package navigator

import (
	"sort"

	"github.com/agentic-research/gitsplit/internal/tree"
)

// Entry is one row of the directory being browsed.
type Entry struct {
	ID   tree.NodeID
	Name string
	Dir  bool
	Mark tree.Mark
}

// Cursor tracks the directory being browsed and the focused entry in it.
// It holds no terminal state and is driven by Model.
type Cursor struct {
	t       *tree.Tree
	dir     tree.NodeID
	entries []tree.NodeID
	pos     int
}

// NewCursor opens the root of t.
func NewCursor(t *tree.Tree) (*Cursor, error) {
	if len(t.Node(t.RootID()).Children) == 0 {
		return nil, tree.ErrEmptyCollection
	}
	c := &Cursor{t: t}
	c.open(t.RootID())
	return c, nil
}

// Tree returns the tree being browsed.
func (c *Cursor) Tree() *tree.Tree {
	return c.t
}

// Dir returns the directory being browsed.
func (c *Cursor) Dir() tree.NodeID {
	return c.dir
}

// Pos returns the index of the focused entry.
func (c *Cursor) Pos() int {
	return c.pos
}

// Entries lists the current directory: directories first, then files, each
// group by name.
func (c *Cursor) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, id := range c.entries {
		out[i] = c.entry(id)
	}
	return out
}

// Focused returns the entry under the cursor.
func (c *Cursor) Focused() Entry {
	return c.entry(c.entries[c.pos])
}

// Up moves focus to the previous entry, wrapping to the last.
func (c *Cursor) Up() {
	c.pos = (c.pos - 1 + len(c.entries)) % len(c.entries)
}

// Down moves focus to the next entry, wrapping to the first.
func (c *Cursor) Down() {
	c.pos = (c.pos + 1) % len(c.entries)
}

// Enter descends into the focused entry if it is a directory.
func (c *Cursor) Enter() bool {
	id := c.entries[c.pos]
	if c.t.IsLeaf(id) {
		return false
	}
	c.open(id)
	return true
}

// Leave goes back to the parent directory and focuses the directory that
// was just left. It does nothing at the root.
func (c *Cursor) Leave() bool {
	parent := c.t.Node(c.dir).Parent
	if parent == tree.NoParent {
		return false
	}
	left := c.dir
	c.open(parent)
	for i, id := range c.entries {
		if id == left {
			c.pos = i
			break
		}
	}
	return true
}

// Toggle selects the focused entry unless it is already fully selected, in
// which case it is unselected. Partially selected directories become
// selected.
func (c *Cursor) Toggle() {
	id := c.entries[c.pos]
	next := tree.Selected
	if c.t.Node(id).Mark == tree.Selected {
		next = tree.Unselected
	}
	c.t.Mark(id, next)
}

// Breadcrumb is the path of the current directory, "./" at the root.
func (c *Cursor) Breadcrumb() string {
	p := c.t.PathOf(c.dir)
	if p == "" {
		return "./"
	}
	return p + "/"
}

func (c *Cursor) open(dir tree.NodeID) {
	ids := c.t.ChildrenOf(dir)
	sort.Slice(ids, func(i, j int) bool {
		a, b := c.t.Node(ids[i]), c.t.Node(ids[j])
		if ad, bd := !a.IsLeaf(), !b.IsLeaf(); ad != bd {
			return ad
		}
		return a.Key < b.Key
	})
	c.dir = dir
	c.entries = ids
	c.pos = 0
}

func (c *Cursor) entry(id tree.NodeID) Entry {
	n := c.t.Node(id)
	return Entry{ID: id, Name: n.Key, Dir: !n.IsLeaf(), Mark: n.Mark}
}
