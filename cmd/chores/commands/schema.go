package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/chores/pkg/config"
	"github.com/macropower/chores/pkg/jsonschema"
)

// NewSchemaCmd returns the schema command.
func NewSchemaCmd() *cobra.Command {
	format := new(string)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			b, err := config.Schema().Marshal(*format)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			_, err = cc.OutOrStdout().Write(b)
			if err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(format, "format", "o", jsonschema.JSONFormat, "Output format (json, yaml)")

	return cmd
}
