package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/gitsplit/internal/git"
	"github.com/agentic-research/gitsplit/internal/journal"
)

var (
	historyLimit int
	historyJSON  bool
	historyQuery string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past split sessions of this repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		j, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()

		sessions, err := j.History(historyLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		switch {
		case historyQuery != "":
			results, err := journal.Query(sessions, historyQuery)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, oj.JSON(results, &oj.Options{Indent: 2}))
		case historyJSON:
			data, err := journal.Generic(sessions)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, oj.JSON(data, &oj.Options{Indent: 2}))
		default:
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(out, "No sessions recorded.")
				return nil
			}
			for _, s := range sessions {
				_, _ = fmt.Fprintln(out, s.String())
				for _, c := range s.Commits {
					_, _ = fmt.Fprintf(out, "\t%s %s (%d files)\n", short(c.Hash), firstLine(c.Message), len(c.Paths))
				}
			}
		}
		return nil
	},
}

func openJournal(cmd *cobra.Command) (*journal.Journal, error) {
	repo, err := git.Open(".")
	if err != nil {
		return nil, err
	}
	gitDir, err := repo.GitDir(cmd.Context())
	if err != nil {
		return nil, err
	}
	return journal.Open(journal.Path(gitDir))
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of sessions to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print sessions as JSON")
	historyCmd.Flags().StringVarP(&historyQuery, "query", "q", "", "JSONPath expression evaluated against the JSON output")
	rootCmd.AddCommand(historyCmd)
}
