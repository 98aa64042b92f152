package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `motion-collector records motion-sensor sessions to CSV and replicates them to a remote store in the background.

Core concepts:
- Recording: one capture session. States: recording -> done -> uploading -> uploaded, or failed.
- Status: what a user sees. "waiting" means done and queued while uploads are enabled.
- Only one recording can be in progress at a time.
- Uploads run one at a time, newest first. A failed upload stays failed until retry_upload.

Typical flow:
1) start_recording, optionally mark_recording with labels such as "walking" or "turning".
2) stop_recording writes the artifact and queues it for upload.
3) list_recordings / get_recording to follow progress.
4) retry_upload to re-send; set_uploads_enabled to pause or resume replication.
5) get_recording_history to see what happened to a recording.

Docs:
- motion://docs/index
- motion://docs/lifecycle
- motion://docs/artifact-format
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "motion://docs/index",
		Name:        "docs_index",
		Title:       "motion-collector docs index",
		Description: "Entry point: available tools and where to read more.",
		Content: `# motion-collector: Docs Index

## Tools

- ` + "`list_recordings`" + `, ` + "`get_recording`" + `: browse recordings and upload progress.
- ` + "`start_recording`" + `, ` + "`mark_recording`" + `, ` + "`stop_recording`" + `: control the capture session.
- ` + "`retry_upload`" + `, ` + "`set_uploads_enabled`" + `: control replication.
- ` + "`delete_recording`" + `: remove a finished recording and its local file.
- ` + "`get_recording_history`" + `: lifecycle log.

## Docs

- ` + "`motion://docs/lifecycle`" + ` - states, statuses and upload rules.
- ` + "`motion://docs/artifact-format`" + ` - the CSV layout.
`,
	},
	{
		URI:         "motion://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Recording lifecycle",
		Description: "State machine, eligibility and retry semantics.",
		Content: `# Recording lifecycle

| State | Status | Meaning |
|-------|--------|---------|
| recording | recording | samples are being captured |
| done | waiting (uploads on) / empty (uploads off) | artifact written, not uploaded |
| uploading | uploading | transfer in progress, see upload_progress |
| uploaded | uploaded | remote copy confirmed |
| failed | failed | artifact write or upload failed |

## Upload rules

- A recording is eligible when it is done, has at least one sample and is not uploaded.
- The newest eligible recording is uploaded first. Only one upload runs at a time.
- Empty recordings are never uploaded.
- A failed upload is not retried automatically. Call ` + "`retry_upload`" + ` to queue it again.
- Uploads interrupted by a restart are returned to the queue at startup.

## Deletion

Recordings that are still capturing cannot be deleted. Deleting removes the local artifact; the remote copy is left alone.
`,
	},
	{
		URI:         "motion://docs/artifact-format",
		Name:        "docs_artifact_format",
		Title:       "Artifact format",
		Description: "CSV columns written for each recording.",
		Content: `# Artifact format

One CSV file per recording, named ` + "`YYYYMMDDHHMMSS.csv`" + ` after its start time.

Header:

    Source, Label, When, X, Y, Z, UA_X, UA_Y, UA_Z, Pitch, Roll, Yaw

- ` + "`When`" + ` is seconds since the first sample.
- accelerometer, gyro and magnetometer rows carry X, Y, Z.
- deviceMotion rows carry rotation X, Y, Z, user acceleration and attitude.
- marker rows carry only a label.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
