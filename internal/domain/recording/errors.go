package recording

import "errors"

var (
	// ErrRecordingNotFound indicates the recording doesn't exist.
	ErrRecordingNotFound = errors.New("recording not found")
	// ErrInvalidTransition indicates an operation called from the wrong state.
	ErrInvalidTransition = errors.New("invalid recording state transition")
	// ErrNotEligible indicates the recording is no longer eligible for upload.
	ErrNotEligible = errors.New("recording not eligible for upload")
	// ErrRecordingActive indicates the recording is still capturing samples.
	ErrRecordingActive = errors.New("recording in progress")
	// ErrRemoteUnavailable indicates no remote root is configured or reachable.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrInvalidInput indicates invalid input for recording operations.
	ErrInvalidInput = errors.New("invalid recording input")
)
