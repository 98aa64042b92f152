package recording

import (
	"fmt"
	"math"
	"time"
)

// State is the lifecycle position of a recording. The numeric values are
// persisted and must not change.
type State int64

const (
	StateRecording State = 0
	StateDone      State = 1
	StateUploading State = 2
	StateUploaded  State = 3
	StateFailed    State = 4
)

var stateNames = map[State]string{
	StateRecording: "recording",
	StateDone:      "done",
	StateUploading: "uploading",
	StateUploaded:  "uploaded",
	StateFailed:    "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int64(s))
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// ParseState maps a state name back to its value.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown state %q", ErrInvalidInput, name)
}

// Recording is the metadata record of one capture session.
type Recording struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	FileName        string    `json:"file_name"`
	LocalPath       string    `json:"local_path"`
	RemotePath      string    `json:"remote_path,omitempty"`
	State           State     `json:"state"`
	SampleCount     int64     `json:"sample_count"`
	DurationSeconds int64     `json:"duration_seconds"`
	UploadProgress  float64   `json:"upload_progress"`
	Uploaded        bool      `json:"uploaded"`
	CreatedAt       time.Time `json:"created_at"`
	ModifiedAt      time.Time `json:"modified_at"`
}

// Eligible reports whether the recording may be picked for upload.
func (r Recording) Eligible() bool {
	return !r.Uploaded && r.SampleCount > 0 && r.State == StateDone
}

// Consistent reports whether the uploaded flag agrees with the state.
func (r Recording) Consistent() bool {
	return !r.Uploaded || r.State == StateUploaded
}

// Elapsed returns the running time while recording and the frozen duration afterwards.
func (r Recording) Elapsed(now time.Time) time.Duration {
	if r.State == StateRecording {
		return now.Sub(r.CreatedAt)
	}
	return time.Duration(r.DurationSeconds) * time.Second
}

func roundedSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(math.Round(d.Seconds()))
}

func clampProgress(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
