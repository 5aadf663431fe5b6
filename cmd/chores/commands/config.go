package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigCmd returns the config command.
func NewConfigCmd(args *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as YAML, after the config file and
CHORES_* environment variables have been applied.
`,
		Args: cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg := args.GetConfig()

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrConfigFailed, err)
			}

			if err := cfg.Encode(cc.OutOrStdout()); err != nil {
				return fmt.Errorf("%w: %w", ErrConfigFailed, err)
			}

			return nil
		},
	}
}
