// Package git talks to the repository being split: it reads the changed files
// of the last N commits and replays a split plan as new commits.
//
// Reads go through go-git. Writes shell out to the git CLI, which owns
// index and ref updates, hooks and signing configuration.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is an opened repository.
type Repo struct {
	root string
	repo *gogit.Repository
}

// Open finds the repository containing dir.
func Open(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}

	r, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	return &Repo{root: wt.Filesystem.Root(), repo: r}, nil
}

// Root returns the top-level directory of the working tree.
func (r *Repo) Root() string {
	return r.root
}

// GitDir returns the absolute path of the repository's git directory.
func (r *Repo) GitDir(ctx context.Context) (string, error) {
	return newGitCommand(r.root, "rev-parse", "--absolute-git-dir").run(ctx)
}

// CurrentBranch returns the short name of the checked out branch.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Name().Short(), nil
}

// Head returns the commit hash HEAD points at.
func (r *Repo) Head() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ChangedFiles lists every path touched between HEAD~depth and HEAD. Renames
// contribute both names so that the removal and the addition can be
// committed together.
func (r *Repo) ChangedFiles(ctx context.Context, depth int) ([]string, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}

	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("%w: repository has no commits", ErrInvalidDepth)
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	tip, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}

	base := tip
	for i := 0; i < depth; i++ {
		base, err = base.Parent(0)
		if err != nil {
			if errors.Is(err, object.ErrParentNotFound) {
				return nil, fmt.Errorf("%w: HEAD~%d does not exist", ErrInvalidDepth, depth)
			}
			return nil, fmt.Errorf("read HEAD~%d: %w", i+1, err)
		}
	}

	from, err := base.Tree()
	if err != nil {
		return nil, fmt.Errorf("read base tree: %w", err)
	}
	to, err := tip.Tree()
	if err != nil {
		return nil, fmt.Errorf("read HEAD tree: %w", err)
	}

	changes, err := from.DiffContext(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	seen := make(map[string]struct{}, len(changes))
	for _, ch := range changes {
		for _, name := range []string{ch.From.Name, ch.To.Name} {
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil, ErrEmptyChangeList
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
