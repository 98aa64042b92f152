package mcp

import (
	"time"

	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/domain/recording"
)

type ListRecordingsParams struct {
	States []string `json:"states,omitempty"`
	Limit  int      `json:"limit,omitempty"`
	Offset int      `json:"offset,omitempty"`
}

type RecordingIDParams struct {
	ID string `json:"id"`
}

type MarkRecordingParams struct {
	Label string `json:"label"`
}

type SetUploadsEnabledParams struct {
	Enabled bool `json:"enabled"`
}

type GetRecordingHistoryParams struct {
	RecordingID string `json:"recording_id,omitempty"`
	Type        string `json:"type,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// RecordingResponse is the user-facing view of a recording.
type RecordingResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	FileName       string    `json:"file_name"`
	State          string    `json:"state"`
	Status         string    `json:"status,omitempty"`
	Samples        int64     `json:"samples"`
	Duration       string    `json:"duration"`
	UploadProgress float64   `json:"upload_progress"`
	Uploaded       bool      `json:"uploaded"`
	RemotePath     string    `json:"remote_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ListRecordingsResponse struct {
	Recordings     []RecordingResponse `json:"recordings"`
	UploadsEnabled bool                `json:"uploads_enabled"`
}

type StopRecordingResponse struct {
	Recording RecordingResponse `json:"recording"`
}

type DeleteRecordingResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type MarkRecordingResponse struct {
	Label string `json:"label"`
}

type UploadsResponse struct {
	Enabled bool `json:"enabled"`
}

type HistoryResponse struct {
	Entries []activity.Entry `json:"entries"`
}

func toRecordingResponse(r recording.Recording, uploadsEnabled bool, now time.Time) RecordingResponse {
	return RecordingResponse{
		ID:             r.ID,
		Name:           r.DisplayName,
		FileName:       r.FileName,
		State:          r.State.String(),
		Status:         recording.Status(r, uploadsEnabled),
		Samples:        r.SampleCount,
		Duration:       recording.FormatDuration(r.Elapsed(now)),
		UploadProgress: r.UploadProgress,
		Uploaded:       r.Uploaded,
		RemotePath:     r.RemotePath,
		CreatedAt:      r.CreatedAt,
	}
}
