package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotRepository indicates the path is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrDetachedHead indicates HEAD does not point at a branch.
	ErrDetachedHead = errors.New("detached HEAD state")

	// ErrInvalidDepth indicates the requested number of commits is not
	// available on the current branch.
	ErrInvalidDepth = errors.New("invalid commit depth")

	// ErrEmptyChangeList indicates the commit range touches no files.
	ErrEmptyChangeList = errors.New("no changed files")

	// ErrDirtyWorkingTree indicates tracked files have uncommitted changes.
	ErrDirtyWorkingTree = errors.New("dirty working tree")

	// ErrNoCandidates indicates Apply was called with an empty plan.
	ErrNoCandidates = errors.New("no commits to create")
)

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
