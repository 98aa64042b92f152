package recording

import (
	"fmt"
	"time"
)

// Status is the user-facing label for a recording. A finished recording reads
// "waiting" only while uploads are enabled.
func Status(r Recording, uploadsEnabled bool) string {
	switch r.State {
	case StateRecording:
		return "recording"
	case StateDone:
		if uploadsEnabled {
			return "waiting"
		}
		return ""
	case StateUploading:
		return "uploading"
	case StateUploaded:
		return "uploaded"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// FormatDuration renders d as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
