package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/output"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var duration time.Duration
	var marks []string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture a recording in the foreground",
		Long:  "Capture samples until --for elapses or Ctrl+C, then write the artifact.\nThe recording is uploaded by the next 'collector serve'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			formatter := output.NewFormatter(os.Stdout)

			for _, label := range marks {
				if !artifact.ValidLabel(label) {
					return fmt.Errorf("%w: mark %q contains a line break", recording.ErrInvalidInput, label)
				}
			}

			rec, err := a.Capture.Start(cmd.Context(), a.NewSource())
			if err != nil {
				return err
			}
			formatter.RecordingStarted(rec)

			for _, label := range marks {
				if err := a.Capture.Mark(label); err != nil {
					return err
				}
				formatter.Marked(label)
			}

			wait := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				wait, cancel = context.WithTimeout(wait, duration)
				defer cancel()
			}
			<-wait.Done()

			// The command context may already be canceled by Ctrl+C; finishing
			// must still write the artifact.
			ctx := context.WithoutCancel(cmd.Context())
			_, result := a.Capture.Stop(ctx)
			if err := <-result; err != nil {
				return err
			}

			finished, err := a.Recordings.Get(ctx, rec.ID)
			if err != nil {
				return err
			}
			formatter.RecordingStopped(finished)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().StringSliceVar(&marks, "mark", nil, "Marker labels to insert at the start")

	return cmd
}
