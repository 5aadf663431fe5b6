package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/macropower/chores/pkg/choretui"
	"github.com/macropower/chores/pkg/chores"
	"github.com/macropower/chores/pkg/config"
)

const (
	condDesc = `Feed chores to a crew of workers waiting on a condition variable.

Enter how many chores to send out, any number of times. A negative number
calls it a day: workers that are napping wake up and leave, and the rest
leave once the backlog allows it (see --shutdown).
`
	condExample = `  # Two workers, two seconds per chore
  chores cond

  # Four quick workers that drop outstanding chores on shutdown
  chores cond --workers 4 --work_duration 250ms --shutdown immediate

  # Scripted input
  printf '3\n-1\n' | chores cond
`
)

var ErrChoresFailed = errors.New("chores failed")

// NewCondCmd returns the cond command.
func NewCondCmd(rootArgs *RootArgs) *cobra.Command {
	args := NewCondArgs(rootArgs)
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:     "cond",
		Short:   "Condition variable demonstration",
		Long:    condDesc,
		Example: condExample,
		Args:    cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg := args.GetConfig()

			flags := cc.Flags()
			if flags.Changed("workers") {
				cfg.Workers = args.GetWorkers()
			}

			if flags.Changed("work_duration") {
				cfg.WorkDuration = args.GetWorkDuration()
			}

			if flags.Changed("shutdown") {
				cfg.Shutdown = args.GetShutdown()
			}

			if flags.Changed("tui") {
				cfg.TUI = args.GetTUI()
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			crew := chores.NewCrew(cfg.CrewOpts()...)
			out := cc.OutOrStdout()

			if cfg.TUI && isTerminal(out) {
				tui, err := choretui.NewCrewTUI(out, cfg.LogLevel, crew)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrChoresFailed, err)
				}

				_, err = tui.Run(cc.Context())
				if err != nil {
					return fmt.Errorf("%w: %w", ErrChoresFailed, err)
				}

				return nil
			}

			reporter := chores.NewReporter(out)
			crew.Subscribe(reporter.Report)

			src := chores.NewLineSource(cc.InOrStdin(), chores.WithPrompt(reporter, chores.DefaultPrompt))
			defer src.Close() //nolint:errcheck // Always nil.

			_, err := crew.Run(cc.Context(), src)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrChoresFailed, err)
			}

			if err := reporter.Err(); err != nil {
				return fmt.Errorf("%w: write output: %w", ErrChoresFailed, err)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(args.workers, "workers", "w", defaults.Workers, "Number of workers")
	cmd.Flags().DurationVar(args.workDuration, "work_duration", defaults.WorkDuration, "How long a single chore takes")
	cmd.Flags().StringVar(args.shutdown, "shutdown", defaults.Shutdown,
		"What happens to outstanding chores on shutdown (drain, immediate)")
	cmd.Flags().BoolVar(args.tui, "tui", defaults.TUI, "Use the interactive terminal UI when stdout is a terminal")

	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
