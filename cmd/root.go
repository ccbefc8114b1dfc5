package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/agentic-research/gitsplit/internal/config"
	"github.com/agentic-research/gitsplit/internal/control"
	"github.com/agentic-research/gitsplit/internal/git"
	"github.com/agentic-research/gitsplit/internal/journal"
	"github.com/agentic-research/gitsplit/internal/navigator"
	"github.com/agentic-research/gitsplit/internal/split"
)

var (
	configPath string
	logFile    string
	dryRun     bool
	noJournal  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default $XDG_CONFIG_HOME/gitsplit/config.hcl)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write debug log to this file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planned commits without touching the repository")
	rootCmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record the session in the journal")
}

var rootCmd = &cobra.Command{
	Use:   "gitsplit [depth]",
	Short: "Split the last commits of the current branch into new ones, file by file",
	Long: `gitsplit collects every file changed in the last [depth] commits and lets you
pick them interactively, one commit at a time. Once every file is assigned the
original commits are replaced by the new ones.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeLog()

		depth := cfg.Depth
		if len(args) == 1 {
			if depth, err = parseDepth(args[0]); err != nil {
				return err
			}
		}
		if noJournal {
			cfg.Journal = false
		}

		return run(cmd.Context(), cmd.OutOrStdout(), cfg, depth)
	},
}

// setup loads the configuration and routes the log. The returned func closes
// the log file.
func setup(cmd *cobra.Command) (config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = logFile
	}

	if cfg.LogFile == "" {
		log.SetOutput(io.Discard)
		return cfg, func() {}, nil
	}
	f, err := tea.LogToFile(cfg.LogFile, "gitsplit")
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open log file: %w", err)
	}
	return cfg, func() { _ = f.Close() }, nil
}

func parseDepth(arg string) (int, error) {
	depth, err := strconv.Atoi(arg)
	if err != nil || depth < 1 {
		return 0, fmt.Errorf("%w: %q", git.ErrInvalidDepth, arg)
	}
	return depth, nil
}

func run(ctx context.Context, out io.Writer, cfg config.Config, depth int) error {
	repo, err := git.Open(".")
	if err != nil {
		return err
	}
	branch, err := repo.CurrentBranch()
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

	files, err := repo.ChangedFiles(ctx, depth)
	if err != nil {
		return err
	}
	log.Printf("gitsplit: %d files changed in the last %d commits of %s", len(files), depth, branch)

	session, err := split.NewSession(files)
	if err != nil {
		return err
	}

	model, err := navigator.New(session, cfg.Glyphs)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("run navigator: %w", err)
	}
	if m, ok := final.(navigator.Model); !ok || !m.Completed() {
		_, _ = fmt.Fprintln(out, "Aborted, no changes were made.")
		return nil
	}

	candidates := session.Candidates()
	if dryRun {
		printPlan(out, candidates)
		return nil
	}

	var (
		j         *journal.Journal
		sessionID int64
	)
	splitter := git.NewSplitter(git.SplitterConfig{
		Dir:          repo.Root(),
		Branch:       branch,
		Depth:        depth,
		BranchPrefix: cfg.BranchPrefix,
		OnCommit: func(seq int, c split.Candidate, hash string) {
			if j == nil {
				return
			}
			if err := j.RecordCommit(sessionID, seq, c, hash); err != nil {
				log.Printf("journal: record commit %d: %v", seq, err)
			}
		},
	})

	if cfg.Journal {
		j, err = journal.Open(journal.Path(gitDir))
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()

		sessionID, err = j.Begin(journal.SessionInfo{
			Repo:       repo.Root(),
			Branch:     branch,
			TempBranch: splitter.TempBranch(),
			Depth:      depth,
		}, files)
		if err != nil {
			return err
		}
	}

	hashes, applyErr := splitter.Apply(ctx, candidates)
	if j != nil {
		status := journal.StatusApplied
		if applyErr != nil {
			status = journal.StatusFailed
		}
		if err := j.Finish(sessionID, status); err != nil {
			log.Printf("journal: %v", err)
		}
	}
	if applyErr != nil {
		return applyErr
	}

	for i, c := range candidates {
		_, _ = fmt.Fprintf(out, "%s %s (%d files)\n", short(hashes[i]), firstLine(c.Message), len(c.Paths))
	}
	return nil
}

func printPlan(out io.Writer, candidates []split.Candidate) {
	for i, c := range candidates {
		_, _ = fmt.Fprintf(out, "commit %d: %s\n", i+1, firstLine(c.Message))
		for _, p := range c.Paths {
			_, _ = fmt.Fprintf(out, "\t%s\n", p)
		}
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "gitsplit:", err)
		if errors.Is(err, control.ErrLocked) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
