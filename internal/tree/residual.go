package tree

// SelectedPaths returns the full path of every leaf marked Selected, in the
// order the paths were inserted.
func (t *Tree) SelectedPaths() []string {
	var out []string
	for _, id := range t.leafIDs {
		n := &t.nodes[id]
		if n.Mark == Selected && n.FullPath != "" {
			out = append(out, n.FullPath)
		}
	}
	return out
}

// Remaining builds a new tree from the leaves that are still Unselected.
// Selected leaves have been spent and are dropped. The receiver is left
// untouched; node ids from it are meaningless in the returned tree.
func (t *Tree) Remaining() (*Tree, error) {
	next := New()
	for _, id := range t.leafIDs {
		n := &t.nodes[id]
		if n.Mark != Unselected || n.FullPath == "" {
			continue
		}
		if err := next.Insert(n.FullPath); err != nil {
			return nil, err
		}
	}
	return next, nil
}
