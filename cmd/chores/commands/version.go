package commands

import (
	"github.com/spf13/cobra"

	"github.com/macropower/chores/pkg/version"
)

func GetVersionString() string {
	return version.Short()
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the chores CLI",
		Args:  cobra.NoArgs,
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(version.Info())
		},
	}
}
