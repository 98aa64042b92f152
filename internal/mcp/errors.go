package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/motion-collector/internal/capture"
	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/domain/recording"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, recording.ErrRecordingNotFound):
		return &APIError{Code: "RECORDING_NOT_FOUND", Message: "recording not found", RecoveryHint: "Call list_recordings for valid ids"}
	case errors.Is(err, recording.ErrRecordingActive):
		return &APIError{Code: "RECORDING_ACTIVE", Message: "recording still capturing", RecoveryHint: "Call stop_recording first"}
	case errors.Is(err, recording.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: "operation not allowed in the current state", RecoveryHint: "Check the recording state"}
	case errors.Is(err, recording.ErrNotEligible):
		return &APIError{Code: "NOT_ELIGIBLE", Message: "recording not eligible for upload"}
	case errors.Is(err, recording.ErrRemoteUnavailable):
		return &APIError{Code: "REMOTE_UNAVAILABLE", Message: "remote store unavailable", RecoveryHint: "Retry later"}
	case errors.Is(err, capture.ErrAlreadyRecording):
		return &APIError{Code: "ALREADY_RECORDING", Message: "a recording is already in progress", RecoveryHint: "Call stop_recording first"}
	case errors.Is(err, capture.ErrNotRecording):
		return &APIError{Code: "NOT_RECORDING", Message: "no recording in progress", RecoveryHint: "Call start_recording first"}
	case errors.Is(err, recording.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}
