package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var idProperty = map[string]any{
	"id": map[string]any{
		"type":        "string",
		"description": "Recording ID",
	},
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Browsing
		{
			Name:        "list_recordings",
			Description: "List recordings newest first with their upload status",
			InputSchema: objectSchema(map[string]any{
				"states": map[string]any{
					"type":        "array",
					"description": "Filter by lifecycle state",
					"items": map[string]any{
						"type": "string",
						"enum": []string{"recording", "done", "uploading", "uploaded", "failed"},
					},
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Offset for pagination",
				},
			}),
		},
		{
			Name:        "get_recording",
			Description: "Get one recording by ID",
			InputSchema: objectSchema(idProperty, "id"),
		},

		// Capture
		{
			Name:        "start_recording",
			Description: "Start capturing motion samples into a new recording",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "mark_recording",
			Description: "Insert a labelled marker into the active recording (e.g. walking, turning)",
			InputSchema: objectSchema(map[string]any{
				"label": map[string]any{
					"type":        "string",
					"description": "Marker label; commas and line breaks are not allowed",
				},
			}, "label"),
		},
		{
			Name:        "stop_recording",
			Description: "Stop the active recording and write its CSV artifact",
			InputSchema: objectSchema(map[string]any{}),
		},

		// Uploads
		{
			Name:        "retry_upload",
			Description: "Queue a finished, failed, or uploaded recording for upload again. Refused while the recording is still being captured",
			InputSchema: objectSchema(idProperty, "id"),
		},
		{
			Name:        "set_uploads_enabled",
			Description: "Turn background uploads on or off",
			InputSchema: objectSchema(map[string]any{
				"enabled": map[string]any{
					"type":        "boolean",
					"description": "Whether uploads should run",
				},
			}, "enabled"),
		},

		// Housekeeping
		{
			Name:        "delete_recording",
			Description: "Delete a recording and its local artifact",
			InputSchema: objectSchema(idProperty, "id"),
		},
		{
			Name:        "get_recording_history",
			Description: "Get lifecycle history for all recordings or one recording",
			InputSchema: objectSchema(map[string]any{
				"recording_id": map[string]any{
					"type":        "string",
					"description": "Recording ID to filter by",
				},
				"type": map[string]any{
					"type":        "string",
					"description": "Filter by entry type",
					"enum":        []string{"created", "finished", "upload_started", "upload_finished", "upload_cleared", "deleted", "reconciled"},
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of entries",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Offset for pagination",
				},
			}),
		},
	}
}

// registerTools exposes every catalog entry through handler.
func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				logger.Warn("tool call failed", "tool", name, "error", err)
				return errorResult(err), nil
			}
			return jsonResult(result)
		})
	}
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *sdkmcp.CallToolResult {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if apiErr = MapError(err); apiErr == nil {
			apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
		}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
