// Package tree models a set of changed file paths as a directory hierarchy
// with tri-state selection marks.
//
// Nodes live in an append-only arena owned by the Tree and are addressed by
// NodeID. Node 0 is always the synthetic root. Nothing is ever removed: once a
// subset of files has been spent on a commit, Remaining builds a fresh Tree
// from the leaves that are left and the old one is discarded.
//
// A Tree is not safe for concurrent use.
package tree

import (
	"path"
	"strings"
)

// NodeID addresses a node inside the Tree that produced it.
type NodeID int

// NoParent is the Parent of the root node.
const NoParent NodeID = -1

// Node is one path component, either a directory or a file.
type Node struct {
	Key      string // path segment; empty for the root
	Mark     Mark
	FullPath string // normalized path, set only on nodes inserted as files
	Parent   NodeID
	Children map[string]NodeID
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsRoot reports whether the node is the synthetic root.
func (n *Node) IsRoot() bool {
	return n.Parent == NoParent
}

// Tree is the arena of nodes plus leaf bookkeeping.
type Tree struct {
	nodes    []Node
	leafIDs  []NodeID // insertion order; never shrinks
	leaves   int
	selected int
}

// New returns a tree holding only the root.
func New() *Tree {
	return &Tree{
		nodes: []Node{{
			Mark:     Unselected,
			Parent:   NoParent,
			Children: make(map[string]NodeID),
		}},
	}
}

// FromPaths builds a tree by inserting every path in order.
func FromPaths(paths []string) (*Tree, error) {
	t := New()
	for _, p := range paths {
		if err := t.Insert(p); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// RootID returns the id of the root node.
func (t *Tree) RootID() NodeID {
	return 0
}

// Node returns the node with the given id. Ids from another tree are a
// programmer error; out-of-range ids panic.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Size returns the number of nodes, root included.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// LeafCount returns the number of paths inserted as files.
func (t *Tree) LeafCount() int {
	return t.leaves
}

// SelectedCount returns the number of leaves currently marked Selected.
func (t *Tree) SelectedCount() int {
	return t.selected
}

// Leaves returns the leaf ids in insertion order.
func (t *Tree) Leaves() []NodeID {
	out := make([]NodeID, len(t.leafIDs))
	copy(out, t.leafIDs)
	return out
}

// IsLeaf reports whether the node has no children.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.nodes[id].IsLeaf()
}

// Insert adds a file path to the tree. The path is cleaned first so that
// "./a/b" and "a//b" land on the same node. Inserting a path twice is a no-op.
func (t *Tree) Insert(p string) error {
	cleaned, parts, err := split(p)
	if err != nil {
		return err
	}

	curr := t.RootID()
	for i, key := range parts {
		if child, ok := t.nodes[curr].Children[key]; ok {
			curr = child
			continue
		}

		last := i == len(parts)-1
		id := NodeID(len(t.nodes))
		n := Node{
			Key:      key,
			Mark:     Unselected,
			Parent:   curr,
			Children: make(map[string]NodeID),
		}
		if last {
			n.FullPath = cleaned
		}
		t.nodes = append(t.nodes, n)
		t.nodes[curr].Children[key] = id

		if last {
			t.leaves++
			t.leafIDs = append(t.leafIDs, id)
		}
		curr = id
	}
	return nil
}

// Find returns the id of the file at p. Paths that resolve to a directory
// are reported as not found.
func (t *Tree) Find(p string) (NodeID, bool) {
	id, ok := t.Lookup(p)
	if !ok || !t.nodes[id].IsLeaf() {
		return 0, false
	}
	return id, true
}

// Lookup returns the id of the node at p, file or directory.
func (t *Tree) Lookup(p string) (NodeID, bool) {
	_, parts, err := split(p)
	if err != nil {
		return 0, false
	}

	curr := t.RootID()
	for _, key := range parts {
		child, ok := t.nodes[curr].Children[key]
		if !ok {
			return 0, false
		}
		curr = child
	}
	return curr, true
}

// PathOf rebuilds the path of any node from its ancestors' keys. The root
// yields "".
func (t *Tree) PathOf(id NodeID) string {
	var keys []string
	for curr := id; curr != NoParent; curr = t.nodes[curr].Parent {
		if k := t.nodes[curr].Key; k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return path.Join(keys...)
}

// ChildrenOf returns the direct children of a node in no particular order.
func (t *Tree) ChildrenOf(id NodeID) []NodeID {
	children := t.nodes[id].Children
	out := make([]NodeID, 0, len(children))
	for _, c := range children {
		out = append(out, c)
	}
	return out
}

// split cleans p and breaks it into components. An absolute path keeps "/"
// as its first component.
func split(p string) (string, []string, error) {
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == "/" || path.Base(cleaned) == ".." {
		return "", nil, ErrFileNameMissing
	}

	var parts []string
	rest := cleaned
	if strings.HasPrefix(rest, "/") {
		parts = append(parts, "/")
		rest = rest[1:]
	}
	parts = append(parts, strings.Split(rest, "/")...)
	return cleaned, parts, nil
}
