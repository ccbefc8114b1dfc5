package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gitsplit/internal/split"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(Path(filepath.Join(t.TempDir(), ".git")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

var files = []string{"a/one.go", "a/two.go", "b/three.go", "README.md"}

func TestBeginAndPending(t *testing.T) {
	j := openTestJournal(t)

	id, err := j.Begin(SessionInfo{Repo: "/repo", Branch: "main", TempBranch: "tmp-branch/x", Depth: 2}, files)
	require.NoError(t, err)
	assert.Positive(t, id)

	pending, err := j.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, "main", pending[0].Branch)
	assert.Equal(t, "tmp-branch/x", pending[0].TempBranch)
	assert.Equal(t, 2, pending[0].Depth)
	assert.Equal(t, StatusRunning, pending[0].Status)
	assert.True(t, pending[0].Finished.IsZero())

	require.NoError(t, j.Finish(id, StatusApplied))
	pending, err = j.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRecordCommitAndHistory(t *testing.T) {
	j := openTestJournal(t)

	id, err := j.Begin(SessionInfo{Repo: "/repo", Branch: "main", TempBranch: "tmp-branch/y", Depth: 1}, files)
	require.NoError(t, err)

	require.NoError(t, j.RecordCommit(id, 0, split.Candidate{Message: "docs", Paths: []string{"README.md"}}, "abc"))
	require.NoError(t, j.RecordCommit(id, 1, split.Candidate{
		Message: "code",
		Paths:   []string{"b/three.go", "a/one.go", "a/two.go"},
	}, "def"))
	require.NoError(t, j.Finish(id, StatusApplied))

	hist, err := j.History(10)
	require.NoError(t, err)
	require.Len(t, hist, 1)

	s := hist[0]
	assert.Equal(t, StatusApplied, s.Status)
	assert.False(t, s.Finished.IsZero())
	require.Len(t, s.Commits, 2)
	assert.Equal(t, "docs", s.Commits[0].Message)
	assert.Equal(t, []string{"README.md"}, s.Commits[0].Paths)
	assert.Equal(t, "abc", s.Commits[0].Hash)
	// Paths come back in change-list order.
	assert.Equal(t, []string{"a/one.go", "a/two.go", "b/three.go"}, s.Commits[1].Paths)
	assert.Contains(t, s.String(), "commits=2")
}

func TestRecordCommitUnknownPath(t *testing.T) {
	j := openTestJournal(t)
	id, err := j.Begin(SessionInfo{Repo: "/repo", Branch: "main", TempBranch: "t", Depth: 1}, files)
	require.NoError(t, err)

	err = j.RecordCommit(id, 0, split.Candidate{Message: "m", Paths: []string{"nope.go"}}, "")
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 3; i++ {
		_, err := j.Begin(SessionInfo{Repo: "/repo", Branch: "main", TempBranch: "t", Depth: i + 1}, files)
		require.NoError(t, err)
	}

	hist, err := j.History(2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 3, hist[0].Depth)
	assert.Equal(t, 2, hist[1].Depth)

	all, err := j.History(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReopenKeepsData(t *testing.T) {
	path := Path(filepath.Join(t.TempDir(), ".git"))
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Begin(SessionInfo{Repo: "/repo", Branch: "main", TempBranch: "t", Depth: 1}, files)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()
	pending, err := j.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestQuery(t *testing.T) {
	j := openTestJournal(t)
	id, err := j.Begin(SessionInfo{Repo: "/repo", Branch: "main", TempBranch: "t", Depth: 1}, files)
	require.NoError(t, err)
	require.NoError(t, j.RecordCommit(id, 0, split.Candidate{Message: "docs", Paths: []string{"README.md"}}, "abc"))
	require.NoError(t, j.RecordCommit(id, 1, split.Candidate{Message: "code", Paths: []string{"a/one.go"}}, "def"))
	require.NoError(t, j.Finish(id, StatusApplied))

	hist, err := j.History(0)
	require.NoError(t, err)

	got, err := Query(hist, "$[*].commits[*].message")
	require.NoError(t, err)
	assert.Equal(t, []any{"docs", "code"}, got)

	got, err = Query(hist, "$[?(@.status == 'applied')].branch")
	require.NoError(t, err)
	assert.Equal(t, []any{"main"}, got)

	_, err = Query(hist, "$[")
	assert.Error(t, err)
}

func TestGenericEmpty(t *testing.T) {
	data, err := Generic(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, data)
}
