package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/capture"
	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/domain/recording"
)

// Handler dispatches MCP commands.
type Handler struct {
	recordings RecordingService
	capture    CaptureService
	uploads    UploadService
	activity   ActivityService
	newSource  func() capture.Source
	now        func() time.Time
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		recordings: services.Recordings,
		capture:    services.Capture,
		uploads:    services.Uploads,
		activity:   services.Activity,
		newSource:  services.NewSource,
		now:        time.Now,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "list_recordings":
		var req ListRecordingsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := recording.ListOptions{Limit: req.Limit, Offset: req.Offset}
		for _, name := range req.States {
			state, err := recording.ParseState(name)
			if err != nil {
				return nil, mapError(err)
			}
			opts.States = append(opts.States, state)
		}
		recs, err := h.recordings.List(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		enabled := h.uploadsEnabled()
		now := h.now()
		resp := ListRecordingsResponse{
			Recordings:     make([]RecordingResponse, 0, len(recs)),
			UploadsEnabled: enabled,
		}
		for _, rec := range recs {
			resp.Recordings = append(resp.Recordings, toRecordingResponse(rec, enabled, now))
		}
		return resp, nil
	case "get_recording":
		var req RecordingIDParams
		if err := decodeID(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.recordings.Get(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return toRecordingResponse(*rec, h.uploadsEnabled(), h.now()), nil
	case "start_recording":
		if h.capture == nil || h.newSource == nil {
			return nil, fmt.Errorf("recording is not available on this server")
		}
		rec, err := h.capture.Start(ctx, h.newSource())
		if err != nil {
			return nil, mapError(err)
		}
		return toRecordingResponse(*rec, h.uploadsEnabled(), h.now()), nil
	case "mark_recording":
		var req MarkRecordingParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Label == "" {
			return nil, mapError(fmt.Errorf("%w: label is required", recording.ErrInvalidInput))
		}
		if !artifact.ValidLabel(req.Label) {
			return nil, mapError(fmt.Errorf("%w: label must not contain commas or line breaks", recording.ErrInvalidInput))
		}
		if h.capture == nil {
			return nil, fmt.Errorf("recording is not available on this server")
		}
		if err := h.capture.Mark(req.Label); err != nil {
			return nil, mapError(err)
		}
		return MarkRecordingResponse{Label: req.Label}, nil
	case "stop_recording":
		if h.capture == nil {
			return nil, fmt.Errorf("recording is not available on this server")
		}
		stopped, result := h.capture.Stop(ctx)
		select {
		case err := <-result:
			if err != nil {
				return nil, mapError(err)
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		rec, err := h.recordings.Get(ctx, stopped.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return StopRecordingResponse{Recording: toRecordingResponse(*rec, h.uploadsEnabled(), h.now())}, nil
	case "retry_upload":
		var req RecordingIDParams
		if err := decodeID(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.recordings.RetryUpload(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return toRecordingResponse(*rec, h.uploadsEnabled(), h.now()), nil
	case "delete_recording":
		var req RecordingIDParams
		if err := decodeID(params, &req); err != nil {
			return nil, err
		}
		if err := h.recordings.Delete(ctx, req.ID); err != nil {
			return nil, mapError(err)
		}
		return DeleteRecordingResponse{ID: req.ID, Deleted: true}, nil
	case "set_uploads_enabled":
		var req SetUploadsEnabledParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if h.uploads == nil {
			return nil, fmt.Errorf("uploads are not configured on this server")
		}
		h.uploads.SetEnabled(req.Enabled)
		return UploadsResponse{Enabled: h.uploads.Enabled()}, nil
	case "get_recording_history":
		var req GetRecordingHistoryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListOptions{RecordingID: req.RecordingID, Limit: req.Limit, Offset: req.Offset}
		if req.Type != "" {
			typ := activity.Type(req.Type)
			opts.Type = &typ
		}
		entries, err := h.activity.History(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		if entries == nil {
			entries = []activity.Entry{}
		}
		return HistoryResponse{Entries: entries}, nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", method)
	}
}

func (h *Handler) uploadsEnabled() bool {
	return h.uploads != nil && h.uploads.Enabled()
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(fmt.Errorf("%w: %v", recording.ErrInvalidInput, err))
	}
	return nil
}

func decodeID(params json.RawMessage, req *RecordingIDParams) error {
	if err := decodeParams(params, req); err != nil {
		return err
	}
	if req.ID == "" {
		return mapError(fmt.Errorf("%w: id is required", recording.ErrInvalidInput))
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
