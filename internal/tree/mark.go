package tree

// Mark is the selection state of a node.
type Mark int

const (
	Unselected Mark = iota
	PartiallySelected
	Selected
)

// String returns the string representation of the mark.
func (m Mark) String() string {
	switch m {
	case Unselected:
		return "unselected"
	case PartiallySelected:
		return "partially-selected"
	case Selected:
		return "selected"
	default:
		return "unknown"
	}
}

// Mark sets m on id and every node beneath it, then recomputes the marks of
// all ancestors and refreshes the selected-leaf count.
//
// Interior marks are a cache of their children's marks: a directory is
// Selected or Unselected only when every child shares that mark, otherwise
// it is PartiallySelected.
func (t *Tree) Mark(id NodeID, m Mark) {
	t.markDown(id, m)
	t.correctAncestors(id)
	t.refreshSelected()
}

func (t *Tree) markDown(id NodeID, m Mark) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t.nodes[curr].Mark = m
		for _, c := range t.nodes[curr].Children {
			stack = append(stack, c)
		}
	}
}

// correctAncestors walks outward from id. Each parent only depends on its
// direct children, which are settled by the time the walk reaches it.
func (t *Tree) correctAncestors(id NodeID) {
	for p := t.nodes[id].Parent; p != NoParent; p = t.nodes[p].Parent {
		t.nodes[p].Mark = t.markFromChildren(p)
	}
}

func (t *Tree) markFromChildren(id NodeID) Mark {
	n := &t.nodes[id]
	if n.IsLeaf() {
		return n.Mark
	}

	allSelected, allUnselected := true, true
	for _, c := range n.Children {
		switch t.nodes[c].Mark {
		case Selected:
			allUnselected = false
		case Unselected:
			allSelected = false
		default:
			allSelected, allUnselected = false, false
		}
	}

	switch {
	case allSelected:
		return Selected
	case allUnselected:
		return Unselected
	default:
		return PartiallySelected
	}
}

// refreshSelected recounts selected leaves from the root. Unselected subtrees
// are skipped: an Unselected directory has no selected leaf beneath it.
func (t *Tree) refreshSelected() {
	count := 0
	stack := []NodeID{t.RootID()}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[curr]
		if n.Mark == Unselected {
			continue
		}
		if n.IsLeaf() {
			if n.Mark == Selected {
				count++
			}
			continue
		}
		for _, c := range n.Children {
			stack = append(stack, c)
		}
	}
	t.selected = count
}
