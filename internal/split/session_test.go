package split

import (
	"testing"

	"github.com/agentic-research/gitsplit/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var changed = []string{
	"dir_1/commit_1",
	"dir_1/commit_2",
	"dir_2/commit_1",
	"dir_2/commit_2",
	"README.md",
}

func selectPath(t *testing.T, s *Session, p string) {
	t.Helper()
	id, ok := s.Tree().Lookup(p)
	require.True(t, ok, "lookup %q", p)
	s.Tree().Mark(id, tree.Selected)
}

func TestNewSession(t *testing.T) {
	s, err := NewSession(changed)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Total())
	assert.Equal(t, 5, s.Tree().LeafCount())
	assert.Equal(t, 1, s.Round())
	assert.False(t, s.Done())
	assert.Empty(t, s.Candidates())
}

func TestNewSessionErrors(t *testing.T) {
	_, err := NewSession(nil)
	assert.ErrorIs(t, err, tree.ErrEmptyCollection)

	_, err = NewSession([]string{"ok.txt", "."})
	assert.ErrorIs(t, err, tree.ErrFileNameMissing)
}

func TestSpendUntilDone(t *testing.T) {
	s, err := NewSession(changed)
	require.NoError(t, err)

	selectPath(t, s, "dir_1")
	c, err := s.Spend("  first\n")
	require.NoError(t, err)
	assert.Equal(t, "first", c.Message)
	assert.Equal(t, []string{"dir_1/commit_1", "dir_1/commit_2"}, c.Paths)
	assert.Equal(t, 3, s.Tree().LeafCount())
	assert.Equal(t, 0, s.Tree().SelectedCount())
	assert.Equal(t, 2, s.Round())

	selectPath(t, s, "dir_2/commit_2")
	selectPath(t, s, "README.md")
	_, err = s.Spend("second")
	require.NoError(t, err)
	assert.False(t, s.Done())

	selectPath(t, s, "dir_2")
	_, err = s.Spend("third")
	require.NoError(t, err)
	assert.True(t, s.Done())

	got := s.Candidates()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"dir_2/commit_2", "README.md"}, got[1].Paths)
	assert.Equal(t, []string{"dir_2/commit_1"}, got[2].Paths)

	var all []string
	for _, c := range got {
		all = append(all, c.Paths...)
	}
	assert.ElementsMatch(t, changed, all)
}

func TestSpendErrorsLeaveSessionUnchanged(t *testing.T) {
	s, err := NewSession(changed)
	require.NoError(t, err)
	before := s.Tree()

	_, err = s.Spend("nothing picked")
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Same(t, before, s.Tree())

	selectPath(t, s, "README.md")
	_, err = s.Spend("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Same(t, before, s.Tree())
	assert.Equal(t, 1, s.Tree().SelectedCount())
	assert.Empty(t, s.Candidates())
}
