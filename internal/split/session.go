// Package split drives one interactive split: it owns the current path tree,
// turns each selection plus message into a commit Candidate and replaces the
// tree with whatever was left unselected.
package split

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/gitsplit/internal/tree"
)

var (
	// ErrEmptyMessage is returned when a selection is spent without a message.
	ErrEmptyMessage = errors.New("commit message is empty")

	// ErrNothingSelected is returned when no file is selected.
	ErrNothingSelected = errors.New("no files selected")
)

// Candidate is one commit to be created: a message and the paths it stages.
type Candidate struct {
	Message string
	Paths   []string
}

// Session holds the tree being browsed and the candidates spent so far.
//
// The tree is swapped, never pruned: node ids obtained from Tree() are only
// valid until the next successful Spend.
type Session struct {
	current    *tree.Tree
	candidates []Candidate
	total      int
}

// NewSession builds the initial tree from the changed paths.
func NewSession(paths []string) (*Session, error) {
	if len(paths) == 0 {
		return nil, tree.ErrEmptyCollection
	}
	t, err := tree.FromPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return &Session{current: t, total: t.LeafCount()}, nil
}

// Tree returns the tree currently being browsed.
func (s *Session) Tree() *tree.Tree {
	return s.current
}

// Candidates returns the commits spent so far, in order.
func (s *Session) Candidates() []Candidate {
	out := make([]Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Round is the 1-based number of the commit currently being assembled.
func (s *Session) Round() int {
	return len(s.candidates) + 1
}

// Total is the number of files the session started with.
func (s *Session) Total() int {
	return s.total
}

// Done reports whether every file has been spent.
func (s *Session) Done() bool {
	return s.current.LeafCount() == 0
}

// Spend turns the current selection into a Candidate and moves on to the
// residual tree. On error the session is left as it was.
func (s *Session) Spend(message string) (Candidate, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Candidate{}, ErrEmptyMessage
	}

	paths := s.current.SelectedPaths()
	if len(paths) == 0 {
		return Candidate{}, ErrNothingSelected
	}

	next, err := s.current.Remaining()
	if err != nil {
		return Candidate{}, fmt.Errorf("rebuild tree: %w", err)
	}

	c := Candidate{Message: message, Paths: paths}
	s.candidates = append(s.candidates, c)
	s.current = next
	return c, nil
}
