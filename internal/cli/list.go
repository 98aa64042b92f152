package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/output"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	var states []string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recordings newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := recording.ListOptions{Limit: limit}
			for _, name := range states {
				state, err := recording.ParseState(name)
				if err != nil {
					return err
				}
				opts.States = append(opts.States, state)
			}

			recs, err := deps.App.Recordings.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			output.NewFormatter(os.Stdout).RecordingList(recs, deps.App.Scanner.Enabled())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&states, "state", nil, "Only show these states (recording, done, uploading, uploaded, failed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of recordings")

	return cmd
}
