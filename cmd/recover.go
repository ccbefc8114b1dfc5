package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gitsplit/internal/control"
	"github.com/agentic-research/gitsplit/internal/git"
	"github.com/agentic-research/gitsplit/internal/journal"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Restore branches left behind by an interrupted split",
	Long: `recover looks up every journaled session that never finished, checks out its
original branch as it was and deletes the temporary branch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog()
		ctx := cmd.Context()

		repo, err := git.Open(".")
		if err != nil {
			return err
		}
		gitDir, err := repo.GitDir(ctx)
		if err != nil {
			return err
		}

		lock, err := control.Acquire(filepath.Join(gitDir, "gitsplit.lock"))
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()

		j, err := journal.Open(journal.Path(gitDir))
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()

		pending, err := j.Pending()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(pending) == 0 {
			_, _ = fmt.Fprintln(out, "Nothing to recover.")
			return nil
		}

		for _, s := range pending {
			log.Printf("recover: session %d, branch %s, temp %s", s.ID, s.Branch, s.TempBranch)
			if err := git.Recover(ctx, repo.Root(), s.Branch, s.TempBranch); err != nil {
				return fmt.Errorf("recover session %d: %w", s.ID, err)
			}
			if err := j.Finish(s.ID, journal.StatusRecovered); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Restored %s (session %d)\n", s.Branch, s.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
