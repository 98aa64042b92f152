// Package cli defines the collector command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ganot/motion-collector/internal/app"
)

type Dependencies struct {
	App *app.App
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "collector",
		Short:         "Record motion-sensor sessions and replicate them to a remote store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewRetryCmd(deps))
	rootCmd.AddCommand(NewDeleteCmd(deps))
	rootCmd.AddCommand(NewHistoryCmd(deps))

	return rootCmd
}
