package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/output"
)

func NewRetryCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Queue a recording for upload again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := deps.App.Recordings.RetryUpload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			output.NewFormatter(os.Stdout).Success("Queued " + rec.DisplayName + " for upload")
			return nil
		},
	}
}

func NewDeleteCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recording and its local artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Recordings.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.NewFormatter(os.Stdout).Success("Deleted " + args[0])
			return nil
		},
	}
}

func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recording lifecycle history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := activity.ListOptions{Limit: limit}
			if len(args) == 1 {
				opts.RecordingID = args[0]
			}
			entries, err := deps.App.Activity.History(cmd.Context(), opts)
			if err != nil {
				return err
			}
			output.NewFormatter(os.Stdout).History(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")

	return cmd
}
