package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// gitCommand is a single git CLI invocation.
type gitCommand struct {
	dir  string
	args []string
	env  []string
}

func newGitCommand(dir string, args ...string) *gitCommand {
	return &gitCommand{dir: dir, args: args}
}

// withEnv adds KEY=VALUE pairs on top of the current environment.
func (c *gitCommand) withEnv(kv ...string) *gitCommand {
	c.env = append(c.env, kv...)
	return c
}

// run executes the command and returns trimmed stdout.
func (c *gitCommand) run(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", c.args...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Args:   c.args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}
