package activity

import "time"

// Type names a recording lifecycle event.
type Type string

const (
	TypeCreated        Type = "created"
	TypeFinished       Type = "finished"
	TypeUploadStarted  Type = "upload_started"
	TypeUploadFinished Type = "upload_finished"
	TypeUploadCleared  Type = "upload_cleared"
	TypeDeleted        Type = "deleted"
	TypeReconciled     Type = "reconciled"
)

// Entry is one line of a recording's history.
type Entry struct {
	ID          int64     `json:"id"`
	RecordingID string    `json:"recording_id"`
	Type        Type      `json:"type"`
	Summary     string    `json:"summary"`
	Details     string    `json:"details,omitempty"` // JSON string
	CreatedAt   time.Time `json:"created_at"`
}
