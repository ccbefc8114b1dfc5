package cmd

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gitsplit/internal/git"
	"github.com/agentic-research/gitsplit/internal/journal"
	"github.com/agentic-research/gitsplit/internal/split"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, out)
	return strings.TrimSpace(string(out))
}

// prepareRepo creates a two-commit repository and makes it the working
// directory of the test.
func prepareRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	runGit(t, dir, "config", "user.name", "Tester")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "commit", "--allow-empty", "-m", "init")
	runGit(t, dir, "commit", "--allow-empty", "-m", "second")
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseDepth(t *testing.T) {
	d, err := parseDepth("4")
	require.NoError(t, err)
	assert.Equal(t, 4, d)

	for _, arg := range []string{"0", "-1", "three"} {
		_, err := parseDepth(arg)
		assert.ErrorIs(t, err, git.ErrInvalidDepth, arg)
	}
}

func TestPrintPlan(t *testing.T) {
	var out bytes.Buffer
	printPlan(&out, []split.Candidate{
		{Message: "docs\n\nlonger body", Paths: []string{"README.md"}},
		{Message: "code", Paths: []string{"a.go", "b.go"}},
	})
	assert.Equal(t, "commit 1: docs\n\tREADME.md\ncommit 2: code\n\ta.go\n\tb.go\n", out.String())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", short("abc"))
	assert.Equal(t, "0123456789ab", short("0123456789abcdef"))
}

func TestHistoryCommand(t *testing.T) {
	dir := prepareRepo(t)

	j, err := journal.Open(journal.Path(filepath.Join(dir, ".git")))
	require.NoError(t, err)
	id, err := j.Begin(journal.SessionInfo{Repo: dir, Branch: "main", TempBranch: "tmp-branch/x", Depth: 1}, []string{"a.go"})
	require.NoError(t, err)
	require.NoError(t, j.RecordCommit(id, 0, split.Candidate{Message: "add a", Paths: []string{"a.go"}}, "0123456789abcdef"))
	require.NoError(t, j.Finish(id, journal.StatusApplied))
	require.NoError(t, j.Close())

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "main depth=1 applied commits=1")
	assert.Contains(t, out, "0123456789ab add a (1 files)")

	out, err = execute(t, "history", "--query", "$[*].commits[*].message")
	require.NoError(t, err)
	assert.Contains(t, out, `"add a"`)
	historyQuery = ""
}

func TestRecoverCommand(t *testing.T) {
	dir := prepareRepo(t)
	head := runGit(t, dir, "rev-parse", "HEAD")

	j, err := journal.Open(journal.Path(filepath.Join(dir, ".git")))
	require.NoError(t, err)
	id, err := j.Begin(journal.SessionInfo{Repo: dir, Branch: "main", TempBranch: "tmp-branch/abandoned", Depth: 1}, []string{"a.go"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	runGit(t, dir, "checkout", "-q", "-b", "tmp-branch/abandoned")
	runGit(t, dir, "reset", "--soft", "HEAD~1")

	out, err := execute(t, "recover")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored main")
	assert.Equal(t, "main", runGit(t, dir, "branch", "--show-current"))
	assert.Equal(t, head, runGit(t, dir, "rev-parse", "HEAD"))

	j, err = journal.Open(journal.Path(filepath.Join(dir, ".git")))
	require.NoError(t, err)
	defer func() { _ = j.Close() }()
	hist, err := j.History(0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, id, hist[0].ID)
	assert.Equal(t, journal.StatusRecovered, hist[0].Status)

	out, err = execute(t, "recover")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to recover.")
}
