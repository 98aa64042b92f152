package replication

import (
	"context"
	"log/slog"

	"github.com/ganot/motion-collector/internal/domain/recording"
)

// Uploader performs a single transfer. It keeps no queue of its own; the
// Scanner guarantees only one upload runs at a time.
type Uploader struct {
	provider   Provider
	recordings Recordings
	registry   *Registry
	metrics    Metrics
	logger     *slog.Logger
}

// NewUploader creates an Uploader. metrics may be nil.
func NewUploader(provider Provider, recordings Recordings, registry *Registry, metrics Metrics, logger *slog.Logger) *Uploader {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Uploader{
		provider:   provider,
		recordings: recordings,
		registry:   registry,
		metrics:    metrics,
		logger:     logger,
	}
}

// Upload copies rec to its remote path. notify runs exactly once, after the
// outcome has been recorded.
func (u *Uploader) Upload(ctx context.Context, rec *recording.Recording, notify func(uploaded bool)) *Monitor {
	dst := rec.RemotePath

	if err := u.provider.Remove(ctx, dst); err != nil {
		u.logger.Warn("failed to remove previous remote copy", "recording_id", rec.ID, "dst", dst, "error", err)
	}

	// The monitor must be watching before the copy starts or a fast transfer
	// could complete unseen.
	mon := u.registry.Start(ctx, MonitorConfig{
		RecordingID: rec.ID,
		Destination: dst,
		Recordings:  u.recordings,
		Provider:    u.provider,
		Notify:      notify,
		Metrics:     u.metrics,
		Logger:      u.logger,
	})
	u.metrics.UploadStarted()
	u.logger.Info("transfer started", "transfer_id", mon.ID(), "recording_id", rec.ID, "src", rec.LocalPath, "dst", dst)

	if err := u.provider.Copy(ctx, rec.LocalPath, dst); err != nil {
		u.logger.Error("failed to start copy", "recording_id", rec.ID, "dst", dst, "error", err)
		mon.Finalize(false)
	}
	return mon
}
