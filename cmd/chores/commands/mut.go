package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/chores/pkg/lockdemo"
)

const (
	mutDesc = `Hold a mutex while another goroutine waits for it.

The lock is released when anything is entered. With --rebel, the waiting
goroutine releases the lock on its own.
`
	mutExample = `  # Release the lock by pressing enter
  chores mut

  # Let the waiting goroutine unlock the mutex itself
  chores mut --rebel
`
)

var ErrLockDemoFailed = errors.New("lock demo failed")

// NewMutCmd returns the mut command.
func NewMutCmd(_ *RootArgs) *cobra.Command {
	rebel := new(bool)

	cmd := &cobra.Command{
		Use:     "mut",
		Short:   "Plain mutex demonstration",
		Long:    mutDesc,
		Example: mutExample,
		Args:    cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			demo := lockdemo.NewDemo(cc.InOrStdin(), cc.OutOrStdout(), lockdemo.WithRebel(*rebel))

			if err := demo.Run(cc.Context()); err != nil {
				return fmt.Errorf("%w: %w", ErrLockDemoFailed, err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(rebel, "rebel", false, "Let the waiting goroutine unlock the mutex it is waiting on")

	return cmd
}
