// Package replication drains finished recordings to a remote store, one
// transfer at a time.
package replication

import (
	"context"
	"time"

	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/events"
)

// Provider is a remote synchronized store. Copy returns once the transfer has
// been started; completion is reported through Watch.
type Provider interface {
	Available(ctx context.Context) bool
	Root() string
	Remove(ctx context.Context, dst string) error
	Copy(ctx context.Context, src, dst string) error
	Watch(dst string, fn func(events.Progress)) *events.Subscription
}

// Recordings is the part of the recording service replication drives.
type Recordings interface {
	NextToUpload(ctx context.Context) (*recording.Recording, error)
	Inconsistent(ctx context.Context) ([]recording.Recording, error)
	BeginUpload(ctx context.Context, id, remoteRoot string) (*recording.Recording, error)
	UpdateProgress(ctx context.Context, id string, percent float64) error
	EndUpload(ctx context.Context, id string, success bool) error
}

// Metrics receives replication measurements.
type Metrics interface {
	ScanCompleted(result string)
	UploadStarted()
	UploadProgress(fraction float64)
	UploadFinished(uploaded bool, elapsed time.Duration)
}

// Scan results reported to Metrics.
const (
	ScanBusy     = "busy"
	ScanDisabled = "disabled"
	ScanEmpty    = "empty"
	ScanStarted  = "started"
	ScanError    = "error"
)

type noopMetrics struct{}

func (noopMetrics) ScanCompleted(string)              {}
func (noopMetrics) UploadStarted()                    {}
func (noopMetrics) UploadProgress(float64)            {}
func (noopMetrics) UploadFinished(bool, time.Duration) {}
