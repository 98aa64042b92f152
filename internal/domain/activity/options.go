package activity

// ListOptions filters history queries.
type ListOptions struct {
	RecordingID string
	Type        *Type
	Limit       int
	Offset      int
}
