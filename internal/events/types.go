package events

// ChangeKind describes what happened to a stored recording.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change is published by the record store after every successful save.
type Change struct {
	Kind        ChangeKind
	RecordingID string
}

// Progress is published by a remote provider for a destination path.
type Progress struct {
	Path string
	// Percent is in [0, 100] when set.
	Percent    *float64
	IsUploaded bool
	// Err reports a transfer that failed after it started.
	Err error
}

// Percent returns a pointer to v for building Progress values.
func Percent(v float64) *float64 {
	return &v
}
