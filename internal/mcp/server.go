package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/ganot/motion-collector/internal/capture"
	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/domain/recording"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// RecordingService defines recording operations needed by MCP.
type RecordingService interface {
	Get(ctx context.Context, id string) (*recording.Recording, error)
	List(ctx context.Context, opts recording.ListOptions) ([]recording.Recording, error)
	RetryUpload(ctx context.Context, id string) (*recording.Recording, error)
	Delete(ctx context.Context, id string) error
}

// CaptureService defines session control needed by MCP.
type CaptureService interface {
	Start(ctx context.Context, src capture.Source) (*recording.Recording, error)
	Mark(label string) error
	Stop(ctx context.Context) (*recording.Recording, <-chan error)
}

// UploadService exposes the global upload toggle.
type UploadService interface {
	SetEnabled(enabled bool)
	Enabled() bool
}

// ActivityService defines history operations needed by MCP.
type ActivityService interface {
	History(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Recordings RecordingService
	Capture    CaptureService
	Uploads    UploadService
	Activity   ActivityService
	// NewSource builds the sample source for each started recording.
	NewSource func() capture.Source
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	CallTimeout   time.Duration
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "motion-collector",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(callTimeoutMiddleware(cfg.CallTimeout))
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services), cfg.Logger)

	cfg.Logger.Debug("mcp server configured", "transport", cfg.TransportMode)
	return server
}
