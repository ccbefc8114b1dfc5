package git

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/agentic-research/gitsplit/internal/split"
)

// DefaultBranchPrefix namespaces the temporary branch used while splitting.
const DefaultBranchPrefix = "tmp-branch"

// SplitterConfig configures a Splitter.
type SplitterConfig struct {
	// Dir is the working tree root.
	Dir string
	// Branch is the branch being rewritten.
	Branch string
	// Depth is how many commits are replaced.
	Depth int
	// BranchPrefix namespaces the temporary branch. Defaults to DefaultBranchPrefix.
	BranchPrefix string
	// Scratch holds pathspec files handed to git. Defaults to the OS temp dir.
	Scratch billy.Filesystem
	// OnCommit is called after each commit is created.
	OnCommit func(seq int, c split.Candidate, hash string)
}

// Splitter replays a split plan on the repository.
//
// The original branch is only moved once every commit has been created on a
// temporary branch; any failure before that point restores the original
// branch and deletes the temporary one.
type Splitter struct {
	dir      string
	branch   string
	depth    int
	temp     string
	scratch  billy.Filesystem
	onCommit func(seq int, c split.Candidate, hash string)
}

// NewSplitter prepares a Splitter with a fresh temporary branch name.
func NewSplitter(cfg SplitterConfig) *Splitter {
	prefix := cfg.BranchPrefix
	if prefix == "" {
		prefix = DefaultBranchPrefix
	}
	scratch := cfg.Scratch
	if scratch == nil {
		scratch = osfs.New(os.TempDir())
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]

	return &Splitter{
		dir:      cfg.Dir,
		branch:   cfg.Branch,
		depth:    cfg.Depth,
		temp:     prefix + "/" + suffix,
		scratch:  scratch,
		onCommit: cfg.OnCommit,
	}
}

// TempBranch returns the name of the temporary branch.
func (s *Splitter) TempBranch() string {
	return s.temp
}

// Apply rewrites the last Depth commits of Branch as one commit per
// candidate and returns the new commit hashes in order.
func (s *Splitter) Apply(ctx context.Context, candidates []split.Candidate) ([]string, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	status, err := s.git(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return nil, err
	}
	if status != "" {
		return nil, ErrDirtyWorkingTree
	}

	if _, err := s.git(ctx, "checkout", "-b", s.temp); err != nil {
		return nil, err
	}
	log.Printf("split: checked out %s from %s", s.temp, s.branch)

	hashes, err := s.replay(ctx, candidates)
	if err != nil {
		if abortErr := s.abort(ctx); abortErr != nil {
			return nil, errors.Join(err, fmt.Errorf("abort: %w", abortErr))
		}
		return nil, err
	}

	if err := s.restore(ctx); err != nil {
		return hashes, fmt.Errorf("restore %s: %w", s.branch, err)
	}
	return hashes, nil
}

func (s *Splitter) replay(ctx context.Context, candidates []split.Candidate) ([]string, error) {
	if _, err := s.git(ctx, "reset", "--soft", "HEAD~"+strconv.Itoa(s.depth)); err != nil {
		return nil, err
	}

	hashes := make([]string, 0, len(candidates))
	for i, c := range candidates {
		hash, err := s.commit(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("commit %d/%d: %w", i+1, len(candidates), err)
		}
		log.Printf("split: commit %d/%d %s (%d files)", i+1, len(candidates), hash, len(c.Paths))
		if s.onCommit != nil {
			s.onCommit(i, c, hash)
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

// commit stages exactly c.Paths. Paths go through a NUL separated pathspec
// file and are matched literally.
func (s *Splitter) commit(ctx context.Context, c split.Candidate) (string, error) {
	f, err := util.TempFile(s.scratch, "", "gitsplit-pathspec-")
	if err != nil {
		return "", fmt.Errorf("create pathspec file: %w", err)
	}
	name := f.Name()
	defer func() { _ = s.scratch.Remove(name) }() // best-effort cleanup

	if _, err := f.Write([]byte(strings.Join(c.Paths, "\x00"))); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write pathspec file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close pathspec file: %w", err)
	}

	specPath := filepath.Join(s.scratch.Root(), name)
	_, err = newGitCommand(s.dir,
		"commit", "-m", c.Message,
		"--pathspec-from-file="+specPath, "--pathspec-file-nul",
	).withEnv("GIT_LITERAL_PATHSPECS=1").run(ctx)
	if err != nil {
		return "", err
	}
	return s.git(ctx, "rev-parse", "HEAD")
}

// restore points the original branch at the rewritten history.
func (s *Splitter) restore(ctx context.Context) error {
	if _, err := s.git(ctx, "checkout", "-B", s.branch); err != nil {
		return err
	}
	if _, err := s.git(ctx, "branch", "-D", s.temp); err != nil {
		return err
	}
	log.Printf("split: %s now holds the split commits", s.branch)
	return nil
}

func (s *Splitter) abort(ctx context.Context) error {
	log.Printf("split: aborting, restoring %s", s.branch)
	return Recover(ctx, s.dir, s.branch, s.temp)
}

func (s *Splitter) git(ctx context.Context, args ...string) (string, error) {
	return newGitCommand(s.dir, args...).run(ctx)
}

// Recover checks out the original branch as it was and deletes the temporary
// branch. The working tree matches the original branch tip at every step of
// a split, so the forced checkout loses nothing.
func Recover(ctx context.Context, dir, branch, temp string) error {
	if _, err := newGitCommand(dir, "checkout", "-f", branch).run(ctx); err != nil {
		return err
	}
	if _, err := newGitCommand(dir, "rev-parse", "--verify", "--quiet", "refs/heads/"+temp).run(ctx); err != nil {
		return nil // already gone
	}
	_, err := newGitCommand(dir, "branch", "-D", temp).run(ctx)
	return err
}
