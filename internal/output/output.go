// Package output renders CLI results.
package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/domain/recording"
)

type Formatter struct {
	w   io.Writer
	now func() time.Time
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w, now: time.Now}
}

func (f *Formatter) RecordingStarted(r *recording.Recording) {
	fmt.Fprintf(f.w, "⏺️  Recording %s (%s)\n", r.DisplayName, r.ID)
}

func (f *Formatter) Marked(label string) {
	fmt.Fprintf(f.w, "📍 Marker: %s\n", label)
}

func (f *Formatter) RecordingStopped(r *recording.Recording) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped: %d samples in %s\n", r.SampleCount, recording.FormatDuration(r.Elapsed(f.now())))
	if r.State == recording.StateFailed {
		f.Warning("artifact could not be written; the recording is marked failed")
		return
	}
	fmt.Fprintf(f.w, "📁 Saved: %s\n", r.LocalPath)
}

// RecordingList prints recordings as a table, newest first.
func (f *Formatter) RecordingList(recs []recording.Recording, uploadsEnabled bool) {
	if len(recs) == 0 {
		f.Info("No recordings found")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tSAMPLES\tDURATION\tUPLOAD\tID")
	now := f.now()
	for _, r := range recs {
		status := recording.Status(r, uploadsEnabled)
		if status == "" {
			status = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%3.0f%%\t%s\n",
			r.DisplayName, status, r.SampleCount, recording.FormatDuration(r.Elapsed(now)), r.UploadProgress*100, r.ID)
	}
	tw.Flush()
}

func (f *Formatter) History(entries []activity.Entry) {
	if len(entries) == 0 {
		f.Info("No history")
		return
	}
	tw := tabwriter.NewWriter(f.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTYPE\tRECORDING\tSUMMARY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Type, e.RecordingID, e.Summary)
	}
	tw.Flush()
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}
